package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPeriodOf(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-03-01 05:00 local is still February in UTC.
	p := PeriodOf(time.Date(2024, 3, 1, 5, 0, 0, 0, loc))
	assert.Equal(t, Period{Year: 2024, Month: 2}, p)

	assert.Equal(t, Period{Year: 2025, Month: 1}, Period{Year: 2024, Month: 12}.Next())
}

func TestMonthlyUsage_Quota(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	u := MonthlyUsage{UserID: uuid.New(), Year: 2024, Month: 5}

	for i := 0; i < FreeMessagesPerMonth; i++ {
		assert.True(t, u.HasFreeQuota())
		before := u.MessageCount
		u.Increment(now)
		assert.Equal(t, before+1, u.MessageCount)
	}
	assert.False(t, u.HasFreeQuota())
	assert.Equal(t, 0, u.Remaining())

	u.Reset(Period{Year: 2024, Month: 6}, now)
	assert.Equal(t, 0, u.MessageCount)
	assert.Equal(t, 6, u.Month)
	assert.Equal(t, now, u.LastResetDate)
}

func TestMonthlyUsage_Swept(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC)
	u := MonthlyUsage{LastResetDate: created, CreatedAt: created}
	assert.False(t, u.Swept())

	u.Increment(created.Add(time.Minute))
	assert.False(t, u.Swept(), "increments do not stamp the row")

	u.Reset(u.Period(), created.Add(4*time.Minute))
	assert.True(t, u.Swept())
}

func TestNewFreeQuotaInfo(t *testing.T) {
	userID := uuid.New()
	p := Period{Year: 2024, Month: 2}

	info := NewFreeQuotaInfo(userID, p, nil)
	assert.Equal(t, FreeMessagesPerMonth, info.RemainingMessages)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), info.StartDate)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), info.EndDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), info.RenewalDate)

	info = NewFreeQuotaInfo(userID, p, &MonthlyUsage{MessageCount: 2})
	assert.Equal(t, 1, info.RemainingMessages)
}
