package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

// ResetDay is the day of the month the reset sweep acts on.
const ResetDay = 1

// =============================================================================
// Interface Definition
// =============================================================================

// UsageResetService starts every user's free allotment afresh each month.
type UsageResetService interface {
	// ResetIfDue runs Reset when now falls on the first day of a UTC month and
	// returns a skipped report otherwise.
	ResetIfDue(ctx context.Context, now time.Time) (*domain.SweepReport, error)

	// Reset makes sure every user with usage in an earlier month has a zeroed
	// row for the month of now. Earlier rows are kept. Running it twice is the
	// same as running it once.
	Reset(ctx context.Context, now time.Time) (*domain.SweepReport, error)
}

// =============================================================================
// Implementation
// =============================================================================

type usageResetService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUsageResetService creates a new UsageResetService.
func NewUsageResetService(st store.Store, logger *slog.Logger) UsageResetService {
	return &usageResetService{
		store:  st,
		logger: logger,
	}
}

func (s *usageResetService) ResetIfDue(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	if now.UTC().Day() != ResetDay {
		report := domain.NewSweepReport(domain.JobTypeUsageReset, now)
		report.Skipped = true
		s.logger.Debug("usage reset not due", "day", now.UTC().Day())
		return report, nil
	}
	return s.Reset(ctx, now)
}

func (s *usageResetService) Reset(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	const op = "usage_reset.reset"

	report := domain.NewSweepReport(domain.JobTypeUsageReset, now)
	period := domain.PeriodOf(now)

	userIDs, err := s.store.ListUserIDsOutsidePeriod(ctx, period)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list users with usage")
	}
	report.Examined = len(userIDs)

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		created, reset, err := s.resetUser(ctx, userID, period, now)
		if err != nil {
			report.AddError(fmt.Errorf("user %s: %w", userID, err))
			s.logger.Error("usage reset failed", "user_id", userID, "error", err)
			continue
		}
		if created {
			report.Created++
		}
		if reset {
			report.Reset++
		}
	}

	metrics.UsageReset(report.Created + report.Reset)
	s.logger.Info("usage reset finished",
		"year", period.Year,
		"month", period.Month,
		"examined", report.Examined,
		"created", report.Created,
		"reset", report.Reset,
		"errors", len(report.Errors),
	)
	return report, nil
}

// resetUser ensures a zeroed current-month row for one user. A row the sweep
// has already stamped this period is left alone so messages sent since are
// kept.
func (s *usageResetService) resetUser(ctx context.Context, userID uuid.UUID, period domain.Period, now time.Time) (created, reset bool, err error) {
	const op = "usage_reset.reset_user"

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		_, err := tx.GetUsage(ctx, userID, period)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Dated to the period start so the stamp below marks it as swept.
			usage, err := tx.EnsureUsage(ctx, userID, period, period.Start())
			if err != nil {
				return domain.Internal(err, op, "failed to create monthly usage")
			}
			if now.After(usage.CreatedAt) {
				if _, err := tx.ResetUsage(ctx, usage.ID, now); err != nil {
					return domain.Internal(err, op, "failed to stamp monthly usage")
				}
			}
			created = true
			return nil
		case err != nil:
			return domain.Internal(err, op, "failed to load monthly usage")
		}

		// Lock the row before deciding.
		usage, err := tx.EnsureUsage(ctx, userID, period, now)
		if err != nil {
			return domain.Internal(err, op, "failed to load monthly usage")
		}
		if usage.MessageCount == 0 || usage.Swept() {
			return nil
		}
		if _, err := tx.ResetUsage(ctx, usage.ID, now); err != nil {
			return domain.Internal(err, op, "failed to reset monthly usage")
		}
		reset = true
		return nil
	})
	return created, reset, err
}
