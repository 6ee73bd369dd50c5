package domain

import (
	"time"

	"github.com/google/uuid"
)

// FreeMessagesPerMonth is the free allotment every user gets each calendar month.
const FreeMessagesPerMonth = 3

// Period identifies a calendar month.
type Period struct {
	Year  int
	Month int
}

// PeriodOf returns the UTC calendar month containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Start returns the first instant of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// MonthlyUsage counts free-quota messages for one user in one calendar month.
type MonthlyUsage struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Year          int
	Month         int
	MessageCount  int
	LastResetDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Period returns the calendar month the row counts.
func (u *MonthlyUsage) Period() Period {
	return Period{Year: u.Year, Month: u.Month}
}

// HasFreeQuota reports whether another free message fits in the month.
func (u *MonthlyUsage) HasFreeQuota() bool {
	return u.MessageCount < FreeMessagesPerMonth
}

// Remaining returns the free messages left, never negative.
func (u *MonthlyUsage) Remaining() int {
	return max(0, FreeMessagesPerMonth-u.MessageCount)
}

// Increment debits one free message.
func (u *MonthlyUsage) Increment(now time.Time) {
	u.MessageCount++
	u.UpdatedAt = now
}

// Reset zeroes the counter and stamps the reset time.
func (u *MonthlyUsage) Reset(p Period, now time.Time) {
	u.Year = p.Year
	u.Month = p.Month
	u.MessageCount = 0
	u.LastResetDate = now
	u.UpdatedAt = now
}

// Swept reports whether the reset sweep has stamped the row since it was
// created. Rows are created with LastResetDate equal to CreatedAt.
func (u *MonthlyUsage) Swept() bool {
	return u.LastResetDate.After(u.CreatedAt)
}

// FreeQuotaInfo is the derived view of the free tier for one month. It is
// never persisted.
type FreeQuotaInfo struct {
	UserID            uuid.UUID
	Year              int
	Month             int
	MaxMessages       int
	RemainingMessages int
	StartDate         time.Time
	EndDate           time.Time
	RenewalDate       time.Time
}

// NewFreeQuotaInfo computes the free tier view for period p. usage may be nil
// when the user has not sent a message this month.
func NewFreeQuotaInfo(userID uuid.UUID, p Period, usage *MonthlyUsage) FreeQuotaInfo {
	remaining := FreeMessagesPerMonth
	if usage != nil {
		remaining = usage.Remaining()
	}
	next := p.Next().Start()
	return FreeQuotaInfo{
		UserID:            userID,
		Year:              p.Year,
		Month:             p.Month,
		MaxMessages:       FreeMessagesPerMonth,
		RemainingMessages: remaining,
		StartDate:         p.Start(),
		EndDate:           next.Add(-time.Millisecond),
		RenewalDate:       next,
	}
}
