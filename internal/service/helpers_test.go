package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/chatquota/internal/ai/mock"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a Clock that always reports t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// midMonth is a day on which the monthly reset is not due.
var midMonth = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	ai     *mock.Provider
	quota  QuotaService
	chat   *chatService
	subs   *subscriptionService
	users  *userService
	logger *slog.Logger
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	st := memory.New()
	logger := testLogger()
	quota := NewQuotaService(st, logger)
	provider := mock.New(logger)

	chat := NewChatService(st, quota, provider, logger).(*chatService)
	chat.now = fixedClock(now)
	subs := NewSubscriptionService(st, quota, logger).(*subscriptionService)
	subs.now = fixedClock(now)
	users := NewUserService(st, logger).(*userService)
	users.now = fixedClock(now)

	return &fixture{
		store:  st,
		ai:     provider,
		quota:  quota,
		chat:   chat,
		subs:   subs,
		users:  users,
		logger: logger,
	}
}

func (f *fixture) createUser(t *testing.T) uuid.UUID {
	t.Helper()
	u, err := f.users.Create(context.Background(), domain.CreateUserParams{
		Email: uuid.NewString()[:8] + "@example.com",
	})
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) createBundle(t *testing.T, userID uuid.UUID, tier domain.SubscriptionTier, cycle domain.BillingCycle, autoRenew bool) *domain.SubscriptionBundle {
	t.Helper()
	b, err := f.subs.Create(context.Background(), domain.CreateSubscriptionParams{
		UserID:       userID,
		Tier:         tier,
		BillingCycle: cycle,
		AutoRenew:    autoRenew,
	})
	require.NoError(t, err)
	return b
}

// useFreeQuota spends the whole free allotment for the month of now.
func (f *fixture) useFreeQuota(t *testing.T, userID uuid.UUID, now time.Time) {
	t.Helper()
	for i := 0; i < domain.FreeMessagesPerMonth; i++ {
		_, err := f.quota.Consume(context.Background(), userID, now)
		require.NoError(t, err)
	}
}
