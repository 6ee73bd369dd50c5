// This file implements development-only tooling endpoints. They are
// registered only when the server runs in development.
//
// Routes handled:
//   - POST  /dev/renewals/process                      -> ProcessRenewals
//   - POST  /dev/usage/reset                           -> ResetUsage
//   - PATCH /dev/subscriptions/{id}/set-renewal-past   -> SetRenewalPast
//   - GET   /dev/subscriptions/{id}/details            -> Details
//   - GET   /dev/sweeps/{jobType}                      -> SweepRuns
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/service"
	"github.com/DukeRupert/chatquota/internal/store"
)

// maxSweepRuns caps the ?limit= of the sweep history route.
const maxSweepRuns = 100

// DevHandler exposes the sweeps and renewal fixtures over HTTP.
type DevHandler struct {
	renewals      service.RenewalService
	resets        service.UsageResetService
	subscriptions service.SubscriptionService
	runs          store.SweepRuns
	logger        *slog.Logger
	now           func() time.Time
}

// NewDevHandler creates a new DevHandler.
func NewDevHandler(
	renewals service.RenewalService,
	resets service.UsageResetService,
	subscriptions service.SubscriptionService,
	runs store.SweepRuns,
	logger *slog.Logger,
) *DevHandler {
	return &DevHandler{
		renewals:      renewals,
		resets:        resets,
		subscriptions: subscriptions,
		runs:          runs,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers dev routes on the provided mux.
func (h *DevHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /dev/renewals/process", h.ProcessRenewals)
	mux.HandleFunc("POST /dev/usage/reset", h.ResetUsage)
	mux.HandleFunc("PATCH /dev/subscriptions/{id}/set-renewal-past", h.SetRenewalPast)
	mux.HandleFunc("GET /dev/subscriptions/{id}/details", h.Details)
	mux.HandleFunc("GET /dev/sweeps/{jobType}", h.SweepRuns)
}

// ProcessRenewals runs one renewal sweep now and returns its report.
func (h *DevHandler) ProcessRenewals(w http.ResponseWriter, r *http.Request) {
	report, err := h.renewals.ProcessRenewals(r.Context(), h.now())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ResetUsage runs the monthly reset now, whatever the day.
func (h *DevHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	report, err := h.resets.Reset(r.Context(), h.now())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SetRenewalPast moves a bundle's renewal date ?days= days into the past
// (default 1) so the next sweep picks it up.
func (h *DevHandler) SetRenewalPast(w http.ResponseWriter, r *http.Request) {
	const op = "handler.dev.set_renewal_past"

	id, err := pathUUID(r, op, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	days, err := queryInt(r, op, "days", 1)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if days < 1 {
		days = 1
	}

	bundle, err := h.subscriptions.SetRenewalDate(r.Context(), id, h.now().AddDate(0, 0, -days))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Renewal date set to %d day(s) ago", days),
		"subscription": newBundleResponse(bundle),
	})
}

type bundleUsageResponse struct {
	TotalMessages int64 `json:"totalMessages"`
	MessagesUsed  int   `json:"messagesUsed"`
}

// Details returns a bundle with its owner's message statistics.
func (h *DevHandler) Details(w http.ResponseWriter, r *http.Request) {
	const op = "handler.dev.details"

	id, err := pathUUID(r, op, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	details, err := h.subscriptions.Details(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscription": newBundleResponse(&details.Bundle),
		"usage": bundleUsageResponse{
			TotalMessages: details.MessageCount,
			MessagesUsed:  details.UsedMessages,
		},
	})
}


// SweepRuns lists the most recent recorded runs of one sweep job, newest
// first. ?limit= defaults to 20.
func (h *DevHandler) SweepRuns(w http.ResponseWriter, r *http.Request) {
	const op = "handler.dev.sweep_runs"

	jobType := r.PathValue("jobType")
	switch jobType {
	case domain.JobTypeSubscriptionRenewal, domain.JobTypeUsageReset:
	default:
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Unknown job type "+jobType))
		return
	}

	limit, err := queryInt(r, op, "limit", 20)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if limit < 1 || limit > maxSweepRuns {
		ErrorResponse(w, r, h.logger, domain.NewValidationError(op, "limit", fmt.Sprintf("must be between 1 and %d", maxSweepRuns)))
		return
	}

	runs, err := h.runs.ListSweepRuns(r.Context(), jobType, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to list sweep runs"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
