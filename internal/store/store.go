// Package store defines the persistence capabilities the services depend on.
//
// Each entity gets a narrow interface; Store bundles them with transactions.
// Concrete adapters live in store/postgres and store/memory and are always
// injected by the caller.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Usage persists monthly free-quota counters.
type Usage interface {
	// EnsureUsage returns the row for (userID, p), creating it with a zero
	// count when absent. Inside a transaction the row is locked.
	EnsureUsage(ctx context.Context, userID uuid.UUID, p domain.Period, now time.Time) (*domain.MonthlyUsage, error)
	GetUsage(ctx context.Context, userID uuid.UUID, p domain.Period) (*domain.MonthlyUsage, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error)
	ResetUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error)
	// ListUserIDsOutsidePeriod returns distinct users holding a row for any month other than p.
	ListUserIDsOutsidePeriod(ctx context.Context, p domain.Period) ([]uuid.UUID, error)
}

// Bundles persists subscription bundles.
type Bundles interface {
	// CreateBundle inserts b, assigning an ID when b.ID is zero.
	CreateBundle(ctx context.Context, b *domain.SubscriptionBundle) error
	// GetBundle loads one bundle. Inside a transaction the row is locked.
	GetBundle(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error)
	// ListBundles returns a user's bundles, newest first.
	ListBundles(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.SubscriptionBundle, error)
	// ListUsableBundles returns active bundles with quota left, newest first.
	// Inside a transaction the rows are locked.
	ListUsableBundles(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error)
	// ListDueForRenewal returns auto-renewing active bundles whose renewal date
	// is at or before now, oldest renewal date first.
	ListDueForRenewal(ctx context.Context, now time.Time) ([]domain.SubscriptionBundle, error)
	// UpdateBundle saves the mutable fields of b.
	UpdateBundle(ctx context.Context, b *domain.SubscriptionBundle) error
}

// Messages persists the append-only chat log.
type Messages interface {
	CreateMessage(ctx context.Context, m *domain.ChatMessage) error
	GetMessage(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error)
	// ListMessages returns up to limit messages, newest first.
	ListMessages(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error)
	CountMessages(ctx context.Context, userID uuid.UUID) (int64, error)
}

// SweepRuns persists the audit trail of background sweeps.
type SweepRuns interface {
	CreateSweepRun(ctx context.Context, r *domain.SweepRun) error
	FinishSweepRun(ctx context.Context, r *domain.SweepRun) error
	ListSweepRuns(ctx context.Context, jobType string, limit int) ([]domain.SweepRun, error)
}

// Store is the full datastore capability.
type Store interface {
	Users
	Usage
	Bundles
	Messages
	SweepRuns

	// WithTx runs fn in a transaction. fn's error rolls everything back.
	// Calling WithTx on a transactional Store reuses the transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
