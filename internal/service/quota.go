// Package service contains the business logic layer.
//
// This file implements the quota evaluator: it decides which source, if any,
// a chat message is debited from, and performs the debit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService evaluates and debits a user's message entitlement.
type QuotaService interface {
	// Evaluate picks the quota source for the next message at now. The current
	// month's usage row is created on first use. The free allotment is used
	// first, then the newest usable bundle.
	// Returns domain.ESUBSCRIPTIONREQUIRED when no source is left.
	Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.QuotaDecision, error)

	// Debit charges one message to the source picked by Evaluate. Exactly one
	// row changes.
	Debit(ctx context.Context, decision *domain.QuotaDecision, now time.Time) error

	// Consume evaluates and debits in one transaction.
	Consume(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.QuotaDecision, error)

	// FreeQuota returns the read-only free tier view for the month of now.
	FreeQuota(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.FreeQuotaInfo, error)

	// Bind returns a QuotaService that runs against st, typically a
	// transaction handed out by store.Store.WithTx.
	Bind(st store.Store) QuotaService
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	store  store.Store
	logger *slog.Logger
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(st store.Store, logger *slog.Logger) QuotaService {
	return &quotaService{
		store:  st,
		logger: logger,
	}
}

func (s *quotaService) Bind(st store.Store) QuotaService {
	return &quotaService{
		store:  st,
		logger: s.logger,
	}
}

func (s *quotaService) Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.QuotaDecision, error) {
	const op = "quota.evaluate"

	period := domain.PeriodOf(now)
	usage, err := s.store.EnsureUsage(ctx, userID, period, now)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load monthly usage")
	}

	decision := &domain.QuotaDecision{
		UserID: userID,
		Usage:  usage,
		Source: domain.DebitSource{Kind: domain.DebitNone},
	}

	if usage.HasFreeQuota() {
		decision.Allowed = true
		decision.Source = domain.FreeQuotaSource()
		return decision, nil
	}

	bundles, err := s.store.ListUsableBundles(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscriptions")
	}
	if len(bundles) == 0 {
		s.logger.Info("free quota exhausted and no usable subscription",
			"user_id", userID,
			"year", period.Year,
			"month", period.Month,
		)
		return nil, domain.SubscriptionRequired(op)
	}

	bundle := bundles[0]
	if !bundle.CanUse() {
		return nil, domain.QuotaExceeded(op, bundle.ID.String())
	}

	decision.Allowed = true
	decision.Source = domain.BundleSource(bundle.ID)
	decision.Bundle = &bundle
	return decision, nil
}

func (s *quotaService) Debit(ctx context.Context, decision *domain.QuotaDecision, now time.Time) error {
	const op = "quota.debit"

	if decision == nil || !decision.Allowed {
		return domain.SubscriptionRequired(op)
	}

	return s.store.WithTx(ctx, func(tx store.Store) error {
		switch decision.Source.Kind {
		case domain.DebitFreeQuota:
			if decision.Usage == nil {
				return domain.Errorf(domain.EINTERNAL, op, "free quota decision without usage row")
			}
			usage, err := tx.IncrementUsage(ctx, decision.Usage.ID, now)
			if err != nil {
				return domain.Internal(err, op, "failed to increment monthly usage")
			}
			decision.Usage = usage
			return nil

		case domain.DebitBundle:
			id := *decision.Source.BundleID
			bundle, err := tx.GetBundle(ctx, id)
			if err != nil {
				return storeErr(err, op, "subscription", id.String())
			}
			if err := bundle.UseMessage(now); err != nil {
				if errors.Is(err, domain.ErrBundleUnusable) {
					return domain.QuotaExceeded(op, id.String())
				}
				return domain.Internal(err, op, "failed to debit subscription")
			}
			if err := tx.UpdateBundle(ctx, bundle); err != nil {
				return domain.Internal(err, op, "failed to update subscription")
			}
			decision.Bundle = bundle
			return nil

		default:
			return domain.SubscriptionRequired(op)
		}
	})
}

func (s *quotaService) Consume(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.QuotaDecision, error) {
	var decision *domain.QuotaDecision
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		bound := s.Bind(tx)

		d, err := bound.Evaluate(ctx, userID, now)
		if err != nil {
			return err
		}
		if err := bound.Debit(ctx, d, now); err != nil {
			return err
		}
		decision = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("message debited",
		"user_id", userID,
		"source", decision.Source.Kind,
	)
	return decision, nil
}

func (s *quotaService) FreeQuota(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.FreeQuotaInfo, error) {
	const op = "quota.free_quota"

	period := domain.PeriodOf(now)
	usage, err := s.store.GetUsage(ctx, userID, period)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, domain.Internal(err, op, "failed to load monthly usage")
		}
		usage = nil
	}

	info := domain.NewFreeQuotaInfo(userID, period, usage)
	return &info, nil
}
