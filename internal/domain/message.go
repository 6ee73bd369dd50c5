package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxQuestionLength bounds a chat question, in characters.
const MaxQuestionLength = 4000

// Chat history page sizes.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ChatMessage is one question/answer exchange. Messages are append-only.
type ChatMessage struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Question  string
	Answer    string
	Tokens    int
	CreatedAt time.Time
}

// ValidateQuestion trims q and checks it is non-blank and within bounds.
func ValidateQuestion(op, q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", NewValidationError(op, "question", "Question is required")
	}
	if utf8.RuneCountInString(q) > MaxQuestionLength {
		return "", NewValidationError(op, "question", "Question must be 4000 characters or fewer")
	}
	return q, nil
}

// ClampHistoryLimit applies the default and upper bound to a history page size.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
