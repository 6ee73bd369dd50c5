package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SubscriptionService manages the lifecycle of subscription bundles.
type SubscriptionService interface {
	// Create purchases a bundle from the tier table.
	// Returns domain.EINVALID for an unknown tier or billing cycle and
	// domain.ENOTFOUND for an unknown user.
	Create(ctx context.Context, params domain.CreateSubscriptionParams) (*domain.SubscriptionBundle, error)

	// Get retrieves one bundle.
	Get(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error)

	// List returns every bundle of a user, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error)

	// ListActive returns the active bundles of a user, newest first.
	ListActive(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error)

	// Cancel turns off auto-renew. The bundle stays usable until it lapses.
	Cancel(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error)

	// SetAutoRenew toggles renewal. Enabling it on an inactive bundle is refused.
	SetAutoRenew(ctx context.Context, id uuid.UUID, autoRenew bool) (*domain.SubscriptionBundle, error)

	// Deactivate retires a bundle immediately.
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error)

	// Entitlements returns the free tier view for the current month followed
	// by the user's bundles.
	Entitlements(ctx context.Context, userID uuid.UUID, activeOnly bool) (*domain.Entitlements, error)

	// SetRenewalDate moves the renewal date of an auto-renewing bundle. Used by
	// development tooling to force a renewal.
	SetRenewalDate(ctx context.Context, id uuid.UUID, at time.Time) (*domain.SubscriptionBundle, error)

	// Details returns a bundle with the owner's message statistics.
	Details(ctx context.Context, id uuid.UUID) (*domain.BundleDetails, error)
}

// =============================================================================
// Implementation
// =============================================================================

type subscriptionService struct {
	store  store.Store
	quota  QuotaService
	logger *slog.Logger
	now    Clock
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(st store.Store, quota QuotaService, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		store:  st,
		quota:  quota,
		logger: logger,
		now:    utcNow,
	}
}

func (s *subscriptionService) Create(ctx context.Context, params domain.CreateSubscriptionParams) (*domain.SubscriptionBundle, error) {
	const op = "subscription.create"

	var verr *domain.ValidationError
	if !params.Tier.IsValid() {
		verr = domain.NewValidationError(op, "tier", "Tier must be one of Basic, Pro, Enterprise")
	}
	if !params.BillingCycle.IsValid() {
		if verr == nil {
			verr = domain.NewValidationError(op, "billingCycle", "Billing cycle must be monthly or yearly")
		} else {
			domain.AddFieldError(verr, "billingCycle", "Billing cycle must be monthly or yearly")
		}
	}
	if verr != nil {
		return nil, verr
	}

	if _, err := s.store.GetUser(ctx, params.UserID); err != nil {
		return nil, storeErr(err, op, "user", params.UserID.String())
	}

	bundle := domain.NewBundle(params.UserID, params.Tier, params.BillingCycle, params.AutoRenew, s.now())
	if err := s.store.CreateBundle(ctx, &bundle); err != nil {
		return nil, domain.Internal(err, op, "failed to create subscription")
	}

	metrics.SubscriptionCreated(string(bundle.Tier), string(bundle.BillingCycle))
	s.logger.Info("subscription created",
		"user_id", bundle.UserID,
		"bundle_id", bundle.ID,
		"tier", bundle.Tier,
		"billing_cycle", bundle.BillingCycle,
		"auto_renew", bundle.AutoRenew,
	)
	return &bundle, nil
}

func (s *subscriptionService) Get(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error) {
	const op = "subscription.get"

	bundle, err := s.store.GetBundle(ctx, id)
	if err != nil {
		return nil, storeErr(err, op, "subscription", id.String())
	}
	return bundle, nil
}

func (s *subscriptionService) List(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error) {
	return s.list(ctx, "subscription.list", userID, false)
}

func (s *subscriptionService) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error) {
	return s.list(ctx, "subscription.list_active", userID, true)
}

func (s *subscriptionService) list(ctx context.Context, op string, userID uuid.UUID, activeOnly bool) ([]domain.SubscriptionBundle, error) {
	bundles, err := s.store.ListBundles(ctx, userID, activeOnly)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscriptions")
	}
	return bundles, nil
}

// update loads a bundle under lock, applies fn and saves it.
func (s *subscriptionService) update(ctx context.Context, op string, id uuid.UUID, fn func(b *domain.SubscriptionBundle, now time.Time) error) (*domain.SubscriptionBundle, error) {
	var updated *domain.SubscriptionBundle
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		bundle, err := tx.GetBundle(ctx, id)
		if err != nil {
			return storeErr(err, op, "subscription", id.String())
		}
		if err := fn(bundle, s.now()); err != nil {
			return err
		}
		if err := tx.UpdateBundle(ctx, bundle); err != nil {
			return domain.Internal(err, op, "failed to update subscription")
		}
		updated = bundle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error) {
	const op = "subscription.cancel"

	bundle, err := s.update(ctx, op, id, func(b *domain.SubscriptionBundle, now time.Time) error {
		b.Cancel(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled", "user_id", bundle.UserID, "bundle_id", bundle.ID)
	return bundle, nil
}

func (s *subscriptionService) SetAutoRenew(ctx context.Context, id uuid.UUID, autoRenew bool) (*domain.SubscriptionBundle, error) {
	const op = "subscription.set_auto_renew"

	bundle, err := s.update(ctx, op, id, func(b *domain.SubscriptionBundle, now time.Time) error {
		if autoRenew && !b.IsActive {
			return domain.Invalid(op, "Cannot enable auto-renew on an inactive subscription")
		}
		b.SetAutoRenew(autoRenew, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription auto-renew updated",
		"user_id", bundle.UserID,
		"bundle_id", bundle.ID,
		"auto_renew", autoRenew,
	)
	return bundle, nil
}

func (s *subscriptionService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error) {
	const op = "subscription.deactivate"

	bundle, err := s.update(ctx, op, id, func(b *domain.SubscriptionBundle, now time.Time) error {
		b.Deactivate(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription deactivated", "user_id", bundle.UserID, "bundle_id", bundle.ID)
	return bundle, nil
}

func (s *subscriptionService) Entitlements(ctx context.Context, userID uuid.UUID, activeOnly bool) (*domain.Entitlements, error) {
	const op = "subscription.entitlements"

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeErr(err, op, "user", userID.String())
	}

	free, err := s.quota.FreeQuota(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	bundles, err := s.list(ctx, op, userID, activeOnly)
	if err != nil {
		return nil, err
	}

	return &domain.Entitlements{
		Free:    *free,
		Bundles: bundles,
	}, nil
}

func (s *subscriptionService) SetRenewalDate(ctx context.Context, id uuid.UUID, at time.Time) (*domain.SubscriptionBundle, error) {
	const op = "subscription.set_renewal_date"

	return s.update(ctx, op, id, func(b *domain.SubscriptionBundle, now time.Time) error {
		if !b.AutoRenew {
			return domain.Invalid(op, "Subscription does not auto-renew")
		}
		at := at.UTC()
		b.RenewalDate = &at
		b.UpdatedAt = now
		return nil
	})
}

func (s *subscriptionService) Details(ctx context.Context, id uuid.UUID) (*domain.BundleDetails, error) {
	const op = "subscription.details"

	bundle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountMessages(ctx, bundle.UserID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count messages")
	}

	return &domain.BundleDetails{
		Bundle:       *bundle,
		MessageCount: count,
		UsedMessages: bundle.UsedMessages(),
	}, nil
}
