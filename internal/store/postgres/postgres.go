// Package postgres implements store.Store on PostgreSQL through the sqlc
// generated queries.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/repository"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed store.Store. Inside WithTx reads of usage and
// bundle rows take row locks (SELECT ... FOR UPDATE).
type Store struct {
	db      *sql.DB
	queries *repository.Queries
	inTx    bool
}

var _ store.Store = (*Store)(nil)

// New creates a Store on an open pool.
func New(db *sql.DB) *Store {
	return &Store{
		db:      db,
		queries: repository.New(db),
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	txStore := &Store{
		db:      s.db,
		queries: s.queries.WithTx(tx),
		inTx:    true,
	}
	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	row, err := s.queries.CreateUser(ctx, repository.CreateUserParams{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return mapErr(err)
	}
	*u = toDomainUser(row)
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUser(row)
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUser(row)
	return &u, nil
}

// =============================================================================
// Usage
// =============================================================================

func (s *Store) EnsureUsage(ctx context.Context, userID uuid.UUID, p domain.Period, now time.Time) (*domain.MonthlyUsage, error) {
	err := s.queries.InsertMonthlyUsageIfAbsent(ctx, repository.InsertMonthlyUsageIfAbsentParams{
		ID:            uuid.New(),
		UserID:        userID,
		Year:          int32(p.Year),
		Month:         int32(p.Month),
		LastResetDate: now,
	})
	if err != nil {
		return nil, mapErr(err)
	}

	var row repository.MonthlyUsage
	if s.inTx {
		row, err = s.queries.GetMonthlyUsageForUpdate(ctx, repository.GetMonthlyUsageForUpdateParams{
			UserID: userID,
			Year:   int32(p.Year),
			Month:  int32(p.Month),
		})
	} else {
		row, err = s.queries.GetMonthlyUsage(ctx, repository.GetMonthlyUsageParams{
			UserID: userID,
			Year:   int32(p.Year),
			Month:  int32(p.Month),
		})
	}
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUsage(row)
	return &u, nil
}

func (s *Store) GetUsage(ctx context.Context, userID uuid.UUID, p domain.Period) (*domain.MonthlyUsage, error) {
	row, err := s.queries.GetMonthlyUsage(ctx, repository.GetMonthlyUsageParams{
		UserID: userID,
		Year:   int32(p.Year),
		Month:  int32(p.Month),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUsage(row)
	return &u, nil
}

func (s *Store) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error) {
	row, err := s.queries.IncrementMonthlyUsage(ctx, repository.IncrementMonthlyUsageParams{
		ID:        id,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUsage(row)
	return &u, nil
}

func (s *Store) ResetUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error) {
	row, err := s.queries.ResetMonthlyUsage(ctx, repository.ResetMonthlyUsageParams{
		ID:            id,
		LastResetDate: now,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	u := toDomainUsage(row)
	return &u, nil
}

func (s *Store) ListUserIDsOutsidePeriod(ctx context.Context, p domain.Period) ([]uuid.UUID, error) {
	ids, err := s.queries.ListUserIDsWithUsageOutsidePeriod(ctx, repository.ListUserIDsWithUsageOutsidePeriodParams{
		Year:  int32(p.Year),
		Month: int32(p.Month),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return ids, nil
}

// =============================================================================
// Bundles
// =============================================================================

func (s *Store) CreateBundle(ctx context.Context, b *domain.SubscriptionBundle) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	row, err := s.queries.CreateSubscriptionBundle(ctx, repository.CreateSubscriptionBundleParams{
		ID:                b.ID,
		UserID:            b.UserID,
		Tier:              string(b.Tier),
		BillingCycle:      string(b.BillingCycle),
		MaxMessages:       int32(b.MaxMessages),
		RemainingMessages: int32(b.RemainingMessages),
		PriceCents:        b.PriceCents,
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		RenewalDate:       domain.ToNullTime(b.RenewalDate),
		AutoRenew:         b.AutoRenew,
		IsActive:          b.IsActive,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	})
	if err != nil {
		return mapErr(err)
	}
	*b = toDomainBundle(row)
	return nil
}

func (s *Store) GetBundle(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error) {
	var (
		row repository.SubscriptionBundle
		err error
	)
	if s.inTx {
		row, err = s.queries.GetSubscriptionBundleForUpdate(ctx, id)
	} else {
		row, err = s.queries.GetSubscriptionBundle(ctx, id)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	b := toDomainBundle(row)
	return &b, nil
}

func (s *Store) ListBundles(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.SubscriptionBundle, error) {
	var (
		rows []repository.SubscriptionBundle
		err  error
	)
	if activeOnly {
		rows, err = s.queries.ListActiveSubscriptionBundlesByUser(ctx, userID)
	} else {
		rows, err = s.queries.ListSubscriptionBundlesByUser(ctx, userID)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return toDomainBundles(rows), nil
}

func (s *Store) ListUsableBundles(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error) {
	var (
		rows []repository.SubscriptionBundle
		err  error
	)
	if s.inTx {
		rows, err = s.queries.ListUsableSubscriptionBundlesByUserForUpdate(ctx, userID)
	} else {
		rows, err = s.queries.ListUsableSubscriptionBundlesByUser(ctx, userID)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return toDomainBundles(rows), nil
}

func (s *Store) ListDueForRenewal(ctx context.Context, now time.Time) ([]domain.SubscriptionBundle, error) {
	rows, err := s.queries.ListSubscriptionBundlesDueForRenewal(ctx, sql.NullTime{Time: now, Valid: true})
	if err != nil {
		return nil, mapErr(err)
	}
	return toDomainBundles(rows), nil
}

func (s *Store) UpdateBundle(ctx context.Context, b *domain.SubscriptionBundle) error {
	row, err := s.queries.UpdateSubscriptionBundle(ctx, repository.UpdateSubscriptionBundleParams{
		ID:                b.ID,
		RemainingMessages: int32(b.RemainingMessages),
		RenewalDate:       domain.ToNullTime(b.RenewalDate),
		AutoRenew:         b.AutoRenew,
		IsActive:          b.IsActive,
		SupersededBy:      domain.ToNullUUID(b.SupersededBy),
		UpdatedAt:         b.UpdatedAt,
	})
	if err != nil {
		return mapErr(err)
	}
	*b = toDomainBundle(row)
	return nil
}

// =============================================================================
// Messages
// =============================================================================

func (s *Store) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	row, err := s.queries.CreateChatMessage(ctx, repository.CreateChatMessageParams{
		ID:        m.ID,
		UserID:    m.UserID,
		Question:  m.Question,
		Answer:    m.Answer,
		Tokens:    int32(m.Tokens),
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return mapErr(err)
	}
	*m = toDomainMessage(row)
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	row, err := s.queries.GetChatMessage(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	m := toDomainMessage(row)
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	rows, err := s.queries.ListChatMessagesByUser(ctx, repository.ListChatMessagesByUserParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	messages := make([]domain.ChatMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toDomainMessage(row))
	}
	return messages, nil
}

func (s *Store) CountMessages(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.queries.CountChatMessagesByUser(ctx, userID)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

// =============================================================================
// Sweep runs
// =============================================================================

func (s *Store) CreateSweepRun(ctx context.Context, r *domain.SweepRun) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	row, err := s.queries.CreateSweepRun(ctx, repository.CreateSweepRunParams{
		ID:        r.ID,
		JobType:   r.JobType,
		Status:    string(r.Status),
		StartedAt: r.StartedAt,
	})
	if err != nil {
		return mapErr(err)
	}
	*r = toDomainSweepRun(row)
	return nil
}

func (s *Store) FinishSweepRun(ctx context.Context, r *domain.SweepRun) error {
	row, err := s.queries.FinishSweepRun(ctx, repository.FinishSweepRunParams{
		ID:           r.ID,
		Status:       string(r.Status),
		FinishedAt:   domain.ToNullTime(r.FinishedAt),
		Details:      toNullRawMessage(r.Details),
		ErrorMessage: domain.ToNullString(r.ErrorMessage),
	})
	if err != nil {
		return mapErr(err)
	}
	*r = toDomainSweepRun(row)
	return nil
}

func (s *Store) ListSweepRuns(ctx context.Context, jobType string, limit int) ([]domain.SweepRun, error) {
	rows, err := s.queries.ListSweepRunsByJobType(ctx, repository.ListSweepRunsByJobTypeParams{
		JobType: jobType,
		Limit:   int32(limit),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	runs := make([]domain.SweepRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, toDomainSweepRun(row))
	}
	return runs, nil
}

// mapErr translates driver errors into store sentinels.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
