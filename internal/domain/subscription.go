// Package domain contains core business types and interfaces.
//
// This file defines subscription bundles: purchased, time-boxed entitlements
// with their own message quota, and the static tier table they are built from.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SubscriptionTier is the pricing tier of a bundle.
type SubscriptionTier string

const (
	SubscriptionTierBasic      SubscriptionTier = "Basic"
	SubscriptionTierPro        SubscriptionTier = "Pro"
	SubscriptionTierEnterprise SubscriptionTier = "Enterprise"
)

func (t SubscriptionTier) String() string {
	return string(t)
}

// IsValid reports whether t is a known tier.
func (t SubscriptionTier) IsValid() bool {
	_, ok := TierPlans[t]
	return ok
}

var tierCaser = cases.Title(language.English)

// ParseTier resolves a tier name case-insensitively ("pro" -> Pro).
func ParseTier(s string) (SubscriptionTier, bool) {
	t := SubscriptionTier(tierCaser.String(strings.ToLower(strings.TrimSpace(s))))
	return t, t.IsValid()
}

// BillingCycle is how often a bundle is billed and renewed.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// IsValid reports whether c is a known billing cycle.
func (c BillingCycle) IsValid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

// ParseBillingCycle resolves a billing cycle case-insensitively.
func ParseBillingCycle(s string) (BillingCycle, bool) {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// UnlimitedMessages marks a bundle without a message cap.
const UnlimitedMessages = -1

// YearlyPriceMultiplier is applied to the monthly base price for yearly
// billing. Ten months for twelve: the annual discount.
const YearlyPriceMultiplier = 10

// TierPlan is the static configuration of a tier.
type TierPlan struct {
	Tier          SubscriptionTier
	MaxMessages   int   // UnlimitedMessages for no cap
	BasePriceCent int64 // monthly price in cents
}

// TierPlans maps tiers to their quota and monthly price.
var TierPlans = map[SubscriptionTier]TierPlan{
	SubscriptionTierBasic: {
		Tier:          SubscriptionTierBasic,
		MaxMessages:   10,
		BasePriceCent: 999,
	},
	SubscriptionTierPro: {
		Tier:          SubscriptionTierPro,
		MaxMessages:   100,
		BasePriceCent: 2999,
	},
	SubscriptionTierEnterprise: {
		Tier:          SubscriptionTierEnterprise,
		MaxMessages:   UnlimitedMessages,
		BasePriceCent: 9999,
	},
}

// PriceFor returns the price in cents of one billing period.
func PriceFor(plan TierPlan, cycle BillingCycle) int64 {
	if cycle == BillingCycleYearly {
		return plan.BasePriceCent * YearlyPriceMultiplier
	}
	return plan.BasePriceCent
}

// PeriodEnd returns the end of a billing period starting at start.
func PeriodEnd(start time.Time, cycle BillingCycle) time.Time {
	if cycle == BillingCycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// BundleState is the lifecycle position of a bundle as seen by the renewal sweep.
type BundleState string

const (
	BundleStateActiveAutoRenew    BundleState = "active_auto_renew"
	BundleStateActiveNoRenew      BundleState = "active_no_renew"
	BundleStateExpiredRenewed     BundleState = "expired_renewed"
	BundleStateExpiredDeactivated BundleState = "expired_deactivated"
)

// ErrBundleUnusable is returned by UseMessage on an inactive or exhausted bundle.
var ErrBundleUnusable = errors.New("cannot use message: subscription inactive or quota exhausted")

// SubscriptionBundle is a purchased entitlement with its own message quota.
type SubscriptionBundle struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Tier              SubscriptionTier
	BillingCycle      BillingCycle
	MaxMessages       int
	RemainingMessages int
	PriceCents        int64
	StartDate         time.Time
	EndDate           time.Time
	RenewalDate       *time.Time
	AutoRenew         bool
	IsActive          bool
	SupersededBy      *uuid.UUID // successor created by a successful renewal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewBundle builds a fresh, active bundle from the tier table.
// The caller assigns the ID when persisting.
func NewBundle(userID uuid.UUID, tier SubscriptionTier, cycle BillingCycle, autoRenew bool, start time.Time) SubscriptionBundle {
	plan := TierPlans[tier]
	end := PeriodEnd(start, cycle)

	b := SubscriptionBundle{
		UserID:            userID,
		Tier:              tier,
		BillingCycle:      cycle,
		MaxMessages:       plan.MaxMessages,
		RemainingMessages: plan.MaxMessages,
		PriceCents:        PriceFor(plan, cycle),
		StartDate:         start,
		EndDate:           end,
		AutoRenew:         autoRenew,
		IsActive:          true,
		CreatedAt:         start,
		UpdatedAt:         start,
	}
	if autoRenew {
		b.RenewalDate = &end
	}
	return b
}

// Price returns the price of one billing period in dollars.
func (b *SubscriptionBundle) Price() float64 {
	return float64(b.PriceCents) / 100
}

// Unlimited reports whether the bundle has no message cap.
func (b *SubscriptionBundle) Unlimited() bool {
	return b.MaxMessages == UnlimitedMessages
}

// CanUse reports whether a message may be debited from the bundle.
func (b *SubscriptionBundle) CanUse() bool {
	return b.IsActive && (b.Unlimited() || b.RemainingMessages > 0)
}

// UsedMessages returns how many messages were debited in this period.
// Always zero for unlimited bundles.
func (b *SubscriptionBundle) UsedMessages() int {
	if b.Unlimited() {
		return 0
	}
	return b.MaxMessages - b.RemainingMessages
}

// UseMessage debits one message. Unlimited bundles keep RemainingMessages at -1.
func (b *SubscriptionBundle) UseMessage(now time.Time) error {
	if !b.CanUse() {
		return ErrBundleUnusable
	}
	if !b.Unlimited() {
		b.RemainingMessages = max(0, b.RemainingMessages-1)
	}
	b.UpdatedAt = now
	return nil
}

// Cancel stops future renewals. The bundle stays usable until it lapses.
func (b *SubscriptionBundle) Cancel(now time.Time) {
	b.AutoRenew = false
	b.RenewalDate = nil
	b.UpdatedAt = now
}

// SetAutoRenew toggles renewal; enabling it schedules renewal at EndDate.
func (b *SubscriptionBundle) SetAutoRenew(autoRenew bool, now time.Time) {
	b.AutoRenew = autoRenew
	if autoRenew {
		end := b.EndDate
		b.RenewalDate = &end
	} else {
		b.RenewalDate = nil
	}
	b.UpdatedAt = now
}

// Deactivate retires the bundle. Inactive bundles are never debited.
func (b *SubscriptionBundle) Deactivate(now time.Time) {
	b.IsActive = false
	b.UpdatedAt = now
}

// DueForRenewal reports whether the renewal sweep should pick the bundle up at now.
func (b *SubscriptionBundle) DueForRenewal(now time.Time) bool {
	return b.IsActive && b.AutoRenew && b.RenewalDate != nil && !b.RenewalDate.After(now)
}

// Renewal builds the successor for the next billing period: it starts at the
// old EndDate, carries tier, cycle, price and AutoRenew over, and has a full quota.
func (b *SubscriptionBundle) Renewal(now time.Time) SubscriptionBundle {
	start := b.EndDate
	end := PeriodEnd(start, b.BillingCycle)

	next := SubscriptionBundle{
		UserID:            b.UserID,
		Tier:              b.Tier,
		BillingCycle:      b.BillingCycle,
		MaxMessages:       b.MaxMessages,
		RemainingMessages: b.MaxMessages,
		PriceCents:        b.PriceCents,
		StartDate:         start,
		EndDate:           end,
		AutoRenew:         b.AutoRenew,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if next.AutoRenew {
		next.RenewalDate = &end
	}
	return next
}

// State returns the bundle's position in the renewal state machine.
func (b *SubscriptionBundle) State() BundleState {
	switch {
	case b.IsActive && b.AutoRenew:
		return BundleStateActiveAutoRenew
	case b.IsActive:
		return BundleStateActiveNoRenew
	case b.SupersededBy != nil:
		return BundleStateExpiredRenewed
	default:
		return BundleStateExpiredDeactivated
	}
}

// CreateSubscriptionParams contains the validated parameters for a purchase.
type CreateSubscriptionParams struct {
	UserID       uuid.UUID
	Tier         SubscriptionTier
	BillingCycle BillingCycle
	AutoRenew    bool
}

// BundleDetails is a diagnostic view of a bundle with its owner's message count.
type BundleDetails struct {
	Bundle       SubscriptionBundle
	MessageCount int64 // all chat messages of the owner
	UsedMessages int
}
