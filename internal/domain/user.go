// Package domain contains core business types and interfaces.
//
// This file defines the User domain type. Users carry no credentials: the
// service trusts the caller-supplied user ID and only checks that it exists.
package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that owns usage rows, bundles and chat messages.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserParams contains the validated parameters for creating a user.
type CreateUserParams struct {
	Email string
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address ("a@b.c"), not a display form.
func ValidateEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}
