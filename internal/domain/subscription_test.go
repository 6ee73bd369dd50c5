package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in     string
		want   SubscriptionTier
		wantOK bool
	}{
		{"Basic", SubscriptionTierBasic, true},
		{"pro", SubscriptionTierPro, true},
		{" ENTERPRISE ", SubscriptionTierEnterprise, true},
		{"premium", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTier(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseBillingCycle(t *testing.T) {
	c, ok := ParseBillingCycle("Yearly")
	assert.True(t, ok)
	assert.Equal(t, BillingCycleYearly, c)

	_, ok = ParseBillingCycle("weekly")
	assert.False(t, ok)
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name  string
		tier  SubscriptionTier
		cycle BillingCycle
		want  int64
	}{
		{"basic monthly", SubscriptionTierBasic, BillingCycleMonthly, 999},
		{"basic yearly", SubscriptionTierBasic, BillingCycleYearly, 9990},
		{"pro yearly", SubscriptionTierPro, BillingCycleYearly, 29990},
		{"enterprise monthly", SubscriptionTierEnterprise, BillingCycleMonthly, 9999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceFor(TierPlans[tt.tier], tt.cycle))
		})
	}
}

func TestNewBundle_ProYearly(t *testing.T) {
	userID := uuid.New()
	b := NewBundle(userID, SubscriptionTierPro, BillingCycleYearly, true, testStart)

	assert.Equal(t, userID, b.UserID)
	assert.InDelta(t, 299.90, b.Price(), 0.001)
	assert.Equal(t, 100, b.MaxMessages)
	assert.Equal(t, 100, b.RemainingMessages)
	assert.Equal(t, testStart.AddDate(1, 0, 0), b.EndDate)
	require.NotNil(t, b.RenewalDate)
	assert.Equal(t, b.EndDate, *b.RenewalDate)
	assert.True(t, b.IsActive)
	assert.Equal(t, BundleStateActiveAutoRenew, b.State())
}

func TestNewBundle_NoAutoRenew(t *testing.T) {
	b := NewBundle(uuid.New(), SubscriptionTierBasic, BillingCycleMonthly, false, testStart)

	assert.Nil(t, b.RenewalDate)
	assert.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), b.EndDate)
	assert.Equal(t, BundleStateActiveNoRenew, b.State())
}

func TestSubscriptionBundle_UseMessage(t *testing.T) {
	t.Run("debits until exhausted", func(t *testing.T) {
		b := NewBundle(uuid.New(), SubscriptionTierBasic, BillingCycleMonthly, false, testStart)
		for i := 0; i < 10; i++ {
			require.NoError(t, b.UseMessage(testStart))
		}
		assert.Equal(t, 0, b.RemainingMessages)
		assert.Equal(t, 10, b.UsedMessages())
		assert.False(t, b.CanUse())
		assert.ErrorIs(t, b.UseMessage(testStart), ErrBundleUnusable)
		assert.Equal(t, 0, b.RemainingMessages)
	})

	t.Run("unlimited never changes remaining", func(t *testing.T) {
		b := NewBundle(uuid.New(), SubscriptionTierEnterprise, BillingCycleMonthly, false, testStart)
		for i := 0; i < 500; i++ {
			require.NoError(t, b.UseMessage(testStart))
		}
		assert.Equal(t, UnlimitedMessages, b.RemainingMessages)
		assert.True(t, b.CanUse())
	})

	t.Run("inactive rejected", func(t *testing.T) {
		b := NewBundle(uuid.New(), SubscriptionTierPro, BillingCycleMonthly, false, testStart)
		b.Deactivate(testStart)
		assert.ErrorIs(t, b.UseMessage(testStart), ErrBundleUnusable)
		assert.Equal(t, 100, b.RemainingMessages)
	})
}

func TestSubscriptionBundle_CancelAndAutoRenew(t *testing.T) {
	b := NewBundle(uuid.New(), SubscriptionTierPro, BillingCycleMonthly, true, testStart)

	b.Cancel(testStart)
	assert.False(t, b.AutoRenew)
	assert.Nil(t, b.RenewalDate)
	assert.True(t, b.IsActive, "cancel keeps the bundle usable")

	b.SetAutoRenew(true, testStart)
	require.NotNil(t, b.RenewalDate)
	assert.Equal(t, b.EndDate, *b.RenewalDate)

	b.SetAutoRenew(false, testStart)
	assert.Nil(t, b.RenewalDate)
}

func TestSubscriptionBundle_DueForRenewal(t *testing.T) {
	b := NewBundle(uuid.New(), SubscriptionTierBasic, BillingCycleMonthly, true, testStart)

	assert.False(t, b.DueForRenewal(testStart))
	assert.True(t, b.DueForRenewal(b.EndDate))
	assert.True(t, b.DueForRenewal(b.EndDate.Add(time.Hour)))

	b.Cancel(testStart)
	assert.False(t, b.DueForRenewal(b.EndDate.Add(time.Hour)))
}

func TestSubscriptionBundle_Renewal(t *testing.T) {
	b := NewBundle(uuid.New(), SubscriptionTierBasic, BillingCycleMonthly, true, testStart)
	b.ID = uuid.New()
	for i := 0; i < 4; i++ {
		require.NoError(t, b.UseMessage(testStart))
	}

	now := b.EndDate.Add(2 * time.Hour)
	next := b.Renewal(now)

	assert.Equal(t, b.EndDate, next.StartDate)
	assert.Equal(t, b.EndDate.AddDate(0, 1, 0), next.EndDate)
	assert.Equal(t, 10, next.RemainingMessages)
	assert.Equal(t, b.PriceCents, next.PriceCents)
	assert.True(t, next.AutoRenew)
	require.NotNil(t, next.RenewalDate)
	assert.Equal(t, next.EndDate, *next.RenewalDate)

	b.Deactivate(now)
	assert.Equal(t, BundleStateExpiredDeactivated, b.State())
	successor := uuid.New()
	b.SupersededBy = &successor
	assert.Equal(t, BundleStateExpiredRenewed, b.State())
}
