package service

import (
	"context"
	"testing"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	february   = time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC)
	firstMarch = time.Date(2024, time.March, 1, 0, 5, 0, 0, time.UTC)
)

func TestUsageResetService_ResetIfDue_SkipsOtherDays(t *testing.T) {
	f := newFixture(t, midMonth)
	userID := f.createUser(t)
	f.useFreeQuota(t, userID, february)

	svc := NewUsageResetService(f.store, testLogger())
	report, err := svc.ResetIfDue(context.Background(), midMonth)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 0, report.Examined)

	_, err = f.store.GetUsage(context.Background(), userID, domain.PeriodOf(midMonth))
	assert.Error(t, err, "no row is created when the reset is not due")
}

func TestUsageResetService_ResetIfDue_FirstOfMonth(t *testing.T) {
	f := newFixture(t, firstMarch)
	ctx := context.Background()
	userID := f.createUser(t)
	f.useFreeQuota(t, userID, february)

	svc := NewUsageResetService(f.store, testLogger())
	report, err := svc.ResetIfDue(ctx, firstMarch)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, report.Created)

	current, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(firstMarch))
	require.NoError(t, err)
	assert.Equal(t, 0, current.MessageCount)
	assert.Equal(t, firstMarch, current.LastResetDate)

	past, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(february))
	require.NoError(t, err)
	assert.Equal(t, domain.FreeMessagesPerMonth, past.MessageCount, "past months are retained")
}

func TestUsageResetService_Reset_Idempotent(t *testing.T) {
	f := newFixture(t, firstMarch)
	ctx := context.Background()
	userID := f.createUser(t)
	f.useFreeQuota(t, userID, february)

	svc := NewUsageResetService(f.store, testLogger())
	_, err := svc.Reset(ctx, firstMarch)
	require.NoError(t, err)

	// A message sent between two runs survives the second run.
	_, err = f.quota.Consume(ctx, userID, firstMarch)
	require.NoError(t, err)

	report, err := svc.Reset(ctx, firstMarch.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Reset)

	current, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(firstMarch))
	require.NoError(t, err)
	assert.Equal(t, 1, current.MessageCount)
}

func TestUsageResetService_ResetIfDue_ZeroesMessagesSentBeforeSweep(t *testing.T) {
	f := newFixture(t, firstMarch)
	ctx := context.Background()
	userID := f.createUser(t)
	f.useFreeQuota(t, userID, february)

	// Messages sent on the first of the month before the sweep runs.
	early := time.Date(2024, time.March, 1, 0, 1, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := f.quota.Consume(ctx, userID, early)
		require.NoError(t, err)
	}

	svc := NewUsageResetService(f.store, testLogger())
	report, err := svc.ResetIfDue(ctx, firstMarch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Reset)

	current, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(firstMarch))
	require.NoError(t, err)
	assert.Equal(t, 0, current.MessageCount)
	assert.True(t, firstMarch.Equal(current.LastResetDate))

	// The next run leaves messages sent after the sweep alone.
	_, err = f.quota.Consume(ctx, userID, firstMarch.Add(time.Minute))
	require.NoError(t, err)

	report, err = svc.ResetIfDue(ctx, firstMarch.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Reset)

	current, err = f.store.GetUsage(ctx, userID, domain.PeriodOf(firstMarch))
	require.NoError(t, err)
	assert.Equal(t, 1, current.MessageCount)
}

func TestUsageResetService_Reset_NoUsers(t *testing.T) {
	f := newFixture(t, firstMarch)

	svc := NewUsageResetService(f.store, testLogger())
	report, err := svc.Reset(context.Background(), firstMarch)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)
	assert.Empty(t, report.Errors)
}
