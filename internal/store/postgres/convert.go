package postgres

import (
	"encoding/json"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/repository"
	"github.com/sqlc-dev/pqtype"
)

func toDomainUser(row repository.User) domain.User {
	return domain.User{
		ID:        row.ID,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toDomainUsage(row repository.MonthlyUsage) domain.MonthlyUsage {
	return domain.MonthlyUsage{
		ID:            row.ID,
		UserID:        row.UserID,
		Year:          int(row.Year),
		Month:         int(row.Month),
		MessageCount:  int(row.MessageCount),
		LastResetDate: row.LastResetDate,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func toDomainBundle(row repository.SubscriptionBundle) domain.SubscriptionBundle {
	return domain.SubscriptionBundle{
		ID:                row.ID,
		UserID:            row.UserID,
		Tier:              domain.SubscriptionTier(row.Tier),
		BillingCycle:      domain.BillingCycle(row.BillingCycle),
		MaxMessages:       int(row.MaxMessages),
		RemainingMessages: int(row.RemainingMessages),
		PriceCents:        row.PriceCents,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		RenewalDate:       domain.NullTimeValue(row.RenewalDate),
		AutoRenew:         row.AutoRenew,
		IsActive:          row.IsActive,
		SupersededBy:      domain.NullUUIDValue(row.SupersededBy),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toDomainBundles(rows []repository.SubscriptionBundle) []domain.SubscriptionBundle {
	bundles := make([]domain.SubscriptionBundle, 0, len(rows))
	for _, row := range rows {
		bundles = append(bundles, toDomainBundle(row))
	}
	return bundles
}

func toDomainMessage(row repository.ChatMessage) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        row.ID,
		UserID:    row.UserID,
		Question:  row.Question,
		Answer:    row.Answer,
		Tokens:    int(row.Tokens),
		CreatedAt: row.CreatedAt,
	}
}

func toDomainSweepRun(row repository.SweepRun) domain.SweepRun {
	r := domain.SweepRun{
		ID:           row.ID,
		JobType:      row.JobType,
		Status:       domain.SweepStatus(row.Status),
		StartedAt:    row.StartedAt,
		FinishedAt:   domain.NullTimeValue(row.FinishedAt),
		ErrorMessage: domain.NullStringValue(row.ErrorMessage),
	}
	if row.Details.Valid {
		r.Details = row.Details.RawMessage
	}
	return r
}

func toNullRawMessage(raw json.RawMessage) pqtype.NullRawMessage {
	if len(raw) == 0 {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}
