// Package domain contains core business types and interfaces.
//
// This file defines the outcome of a quota evaluation: which source, if any,
// a chat message is debited from.
package domain

import "github.com/google/uuid"

// DebitKind identifies the quota source a message is charged to.
type DebitKind string

const (
	DebitFreeQuota DebitKind = "free_quota"
	DebitBundle    DebitKind = "bundle"
	DebitNone      DebitKind = "none"
)

// DebitSource names the quota source picked by an evaluation. BundleID is set
// only when Kind is DebitBundle.
type DebitSource struct {
	Kind     DebitKind
	BundleID *uuid.UUID
}

// FreeQuotaSource is the debit source for the monthly free allotment.
func FreeQuotaSource() DebitSource {
	return DebitSource{Kind: DebitFreeQuota}
}

// BundleSource is the debit source for a subscription bundle.
func BundleSource(id uuid.UUID) DebitSource {
	return DebitSource{Kind: DebitBundle, BundleID: &id}
}

// QuotaDecision is the result of evaluating a user's entitlement at a point in time.
type QuotaDecision struct {
	UserID  uuid.UUID
	Allowed bool
	Source  DebitSource
	Usage   *MonthlyUsage       // current-month row, always loaded
	Bundle  *SubscriptionBundle // set when Source.Kind == DebitBundle
}

// Entitlements is every quota source a user holds: the free tier view plus bundles.
type Entitlements struct {
	Free    FreeQuotaInfo
	Bundles []SubscriptionBundle
}
