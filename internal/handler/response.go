package handler

import (
	"fmt"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/google/uuid"
)

// freeTierName labels the free allotment in entitlement lists.
const freeTierName = "Free"

// Entitlement kinds in subscription lists.
const (
	KindFree   = "free"
	KindBundle = "bundle"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type messageResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMessageResponse(m *domain.ChatMessage) messageResponse {
	return messageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Question:  m.Question,
		Answer:    m.Answer,
		Tokens:    m.Tokens,
		CreatedAt: m.CreatedAt,
	}
}

type bundleResponse struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"userId"`
	Tier              string     `json:"tier"`
	BillingCycle      string     `json:"billingCycle"`
	MaxMessages       int        `json:"maxMessages"`
	RemainingMessages int        `json:"remainingMessages"`
	Price             float64    `json:"price"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           time.Time  `json:"endDate"`
	RenewalDate       *time.Time `json:"renewalDate"`
	AutoRenew         bool       `json:"autoRenew"`
	IsActive          bool       `json:"isActive"`
	State             string     `json:"state"`
	SupersededBy      *uuid.UUID `json:"supersededBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func newBundleResponse(b *domain.SubscriptionBundle) bundleResponse {
	return bundleResponse{
		ID:                b.ID,
		UserID:            b.UserID,
		Tier:              b.Tier.String(),
		BillingCycle:      string(b.BillingCycle),
		MaxMessages:       b.MaxMessages,
		RemainingMessages: b.RemainingMessages,
		Price:             b.Price(),
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		RenewalDate:       b.RenewalDate,
		AutoRenew:         b.AutoRenew,
		IsActive:          b.IsActive,
		State:             string(b.State()),
		SupersededBy:      b.SupersededBy,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

type freeQuotaResponse struct {
	ID                string    `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	Tier              string    `json:"tier"`
	BillingCycle      string    `json:"billingCycle"`
	MaxMessages       int       `json:"maxMessages"`
	RemainingMessages int       `json:"remainingMessages"`
	Price             float64   `json:"price"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	RenewalDate       time.Time `json:"renewalDate"`
	AutoRenew         bool      `json:"autoRenew"`
	IsActive          bool      `json:"isActive"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
}

// newFreeQuotaResponse renders the free allotment in the shape of a bundle.
// It renews every month and is always active.
func newFreeQuotaResponse(f *domain.FreeQuotaInfo) freeQuotaResponse {
	return freeQuotaResponse{
		ID:                fmt.Sprintf("free-%d-%d", f.Year, f.Month),
		UserID:            f.UserID,
		Tier:              freeTierName,
		BillingCycle:      string(domain.BillingCycleMonthly),
		MaxMessages:       f.MaxMessages,
		RemainingMessages: f.RemainingMessages,
		StartDate:         f.StartDate,
		EndDate:           f.EndDate,
		RenewalDate:       f.RenewalDate,
		AutoRenew:         true,
		IsActive:          true,
		Year:              f.Year,
		Month:             f.Month,
	}
}

// Subscription list entries carry a kind tag next to the flattened view.
type freeEntitlement struct {
	Kind string `json:"kind"`
	freeQuotaResponse
}

type bundleEntitlement struct {
	Kind string `json:"kind"`
	bundleResponse
}

// newEntitlementsResponse lists the free allotment first, then the bundles.
func newEntitlementsResponse(e *domain.Entitlements) []any {
	out := make([]any, 0, len(e.Bundles)+1)
	out = append(out, freeEntitlement{Kind: KindFree, freeQuotaResponse: newFreeQuotaResponse(&e.Free)})
	for i := range e.Bundles {
		out = append(out, bundleEntitlement{Kind: KindBundle, bundleResponse: newBundleResponse(&e.Bundles[i])})
	}
	return out
}
