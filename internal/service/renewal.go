package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/chatquota/internal/billing"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/store"
)

// Renewal outcomes reported to metrics.
const (
	RenewalRenewed     = "renewed"
	RenewalDeclined    = "declined"
	RenewalFailed      = "error"
	RenewalNoLongerDue = "not_due"
)

// =============================================================================
// Interface Definition
// =============================================================================

// RenewalService renews auto-renewing bundles whose renewal date has passed.
type RenewalService interface {
	// ProcessRenewals charges every due bundle. A paid bundle is retired and
	// replaced by its successor for the next period; a declined one is
	// deactivated. Per-bundle failures are collected in the report and leave
	// the bundle due for the next sweep.
	ProcessRenewals(ctx context.Context, now time.Time) (*domain.SweepReport, error)
}

// =============================================================================
// Implementation
// =============================================================================

type renewalService struct {
	store   store.Store
	gateway billing.PaymentGateway
	logger  *slog.Logger
}

// NewRenewalService creates a new RenewalService.
func NewRenewalService(st store.Store, gateway billing.PaymentGateway, logger *slog.Logger) RenewalService {
	return &renewalService{
		store:   st,
		gateway: gateway,
		logger:  logger,
	}
}

func (s *renewalService) ProcessRenewals(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	const op = "renewal.process"

	report := domain.NewSweepReport(domain.JobTypeSubscriptionRenewal, now)

	due, err := s.store.ListDueForRenewal(ctx, now)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscriptions due for renewal")
	}
	report.Examined = len(due)

	for _, bundle := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome, err := s.renew(ctx, bundle, now)
		metrics.RenewalProcessed(outcome)

		switch outcome {
		case RenewalRenewed:
			report.Renewed++
			report.Created++
		case RenewalDeclined:
			report.Deactivated++
		case RenewalFailed:
			report.AddError(fmt.Errorf("bundle %s: %w", bundle.ID, err))
			s.logger.Error("subscription renewal failed",
				"bundle_id", bundle.ID,
				"user_id", bundle.UserID,
				"error", err,
			)
		}
	}

	s.logger.Info("renewal sweep finished",
		"examined", report.Examined,
		"renewed", report.Renewed,
		"deactivated", report.Deactivated,
		"errors", len(report.Errors),
	)
	return report, nil
}

// renew charges one bundle and applies the outcome.
func (s *renewalService) renew(ctx context.Context, bundle domain.SubscriptionBundle, now time.Time) (string, error) {
	const op = "renewal.renew"

	err := s.gateway.Charge(ctx, billing.Charge{
		BundleID:    bundle.ID,
		UserID:      bundle.UserID,
		AmountCents: bundle.PriceCents,
		Description: fmt.Sprintf("%s %s renewal", bundle.Tier, bundle.BillingCycle),
	})
	if err != nil {
		if !billing.IsDeclined(err) {
			return RenewalFailed, err
		}
		if err := s.deactivate(ctx, op, bundle, now); err != nil {
			return RenewalFailed, err
		}
		s.logger.Info("subscription renewal declined, bundle deactivated",
			"bundle_id", bundle.ID,
			"user_id", bundle.UserID,
		)
		return RenewalDeclined, nil
	}

	var successor domain.SubscriptionBundle
	errNotDue := errors.New("no longer due")
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		old, err := tx.GetBundle(ctx, bundle.ID)
		if err != nil {
			return storeErr(err, op, "subscription", bundle.ID.String())
		}
		if !old.DueForRenewal(now) {
			return errNotDue
		}

		successor = old.Renewal(now)
		if err := tx.CreateBundle(ctx, &successor); err != nil {
			return domain.Internal(err, op, "failed to create renewed subscription")
		}

		old.Deactivate(now)
		old.SupersededBy = &successor.ID
		if err := tx.UpdateBundle(ctx, old); err != nil {
			return domain.Internal(err, op, "failed to retire renewed subscription")
		}
		return nil
	})
	if errors.Is(err, errNotDue) {
		s.logger.Warn("subscription changed during renewal, skipping", "bundle_id", bundle.ID)
		return RenewalNoLongerDue, nil
	}
	if err != nil {
		return RenewalFailed, err
	}

	s.logger.Info("subscription renewed",
		"bundle_id", bundle.ID,
		"successor_id", successor.ID,
		"user_id", bundle.UserID,
		"tier", successor.Tier,
		"end_date", successor.EndDate,
	)
	return RenewalRenewed, nil
}

func (s *renewalService) deactivate(ctx context.Context, op string, bundle domain.SubscriptionBundle, now time.Time) error {
	return s.store.WithTx(ctx, func(tx store.Store) error {
		b, err := tx.GetBundle(ctx, bundle.ID)
		if err != nil {
			return storeErr(err, op, "subscription", bundle.ID.String())
		}
		b.Deactivate(now)
		if err := tx.UpdateBundle(ctx, b); err != nil {
			return domain.Internal(err, op, "failed to deactivate subscription")
		}
		return nil
	})
}
