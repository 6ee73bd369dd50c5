// Package service contains the business logic layer.
//
// Services orchestrate interactions between the datastore, the answer
// provider, the payment gateway and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Transaction coordination
// - Error translation (datastore errors -> domain errors)
package service

import (
	"errors"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// storeErr translates a datastore error into a domain error.
func storeErr(err error, op, resource, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NotFound(op, resource, id)
	case errors.Is(err, store.ErrConflict):
		return domain.Conflict(op, resource+" already exists")
	default:
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return err
		}
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return err
		}
		return domain.Internal(err, op, "failed to access "+resource)
	}
}
