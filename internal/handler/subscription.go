// This file implements the subscription endpoints.
//
// Routes handled:
//   - POST  /subscriptions/users/{userId}/subscriptions        -> Create
//   - GET   /subscriptions/users/{userId}/subscriptions        -> List
//   - GET   /subscriptions/users/{userId}/subscriptions/active -> ListActive
//   - GET   /subscriptions/{id}                                -> Get
//   - PATCH /subscriptions/{id}/cancel                         -> Cancel
//   - PATCH /subscriptions/{id}/auto-renew                     -> SetAutoRenew
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/service"
)

// SubscriptionHandler handles subscription HTTP requests.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptions service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers subscription routes on the provided mux.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /subscriptions/users/{userId}/subscriptions", h.Create)
	mux.HandleFunc("GET /subscriptions/users/{userId}/subscriptions", h.List)
	mux.HandleFunc("GET /subscriptions/users/{userId}/subscriptions/active", h.ListActive)
	mux.HandleFunc("GET /subscriptions/{id}", h.Get)
	mux.HandleFunc("PATCH /subscriptions/{id}/cancel", h.Cancel)
	mux.HandleFunc("PATCH /subscriptions/{id}/auto-renew", h.SetAutoRenew)
}

type createSubscriptionRequest struct {
	Tier         string `json:"tier"`
	BillingCycle string `json:"billingCycle"`
	AutoRenew    bool   `json:"autoRenew"`
}

// Create purchases a bundle. Tier and cycle names are matched
// case-insensitively.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.subscription.create"

	userID, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createSubscriptionRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Unknown names pass through and are rejected by the service.
	tier, _ := domain.ParseTier(req.Tier)
	cycle, _ := domain.ParseBillingCycle(req.BillingCycle)

	bundle, err := h.subscriptions.Create(r.Context(), domain.CreateSubscriptionParams{
		UserID:       userID,
		Tier:         tier,
		BillingCycle: cycle,
		AutoRenew:    req.AutoRenew,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newBundleResponse(bundle))
}

// List returns the free allotment followed by every bundle of the user.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	h.entitlements(w, r, "handler.subscription.list", false)
}

// ListActive returns the free allotment followed by the active bundles.
func (h *SubscriptionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.entitlements(w, r, "handler.subscription.list_active", true)
}

func (h *SubscriptionHandler) entitlements(w http.ResponseWriter, r *http.Request, op string, activeOnly bool) {
	userID, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	ent, err := h.subscriptions.Entitlements(r.Context(), userID, activeOnly)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": newEntitlementsResponse(ent)})
}

// Get returns one bundle.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.subscription.get"

	id, err := pathUUID(r, op, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	bundle, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBundleResponse(bundle))
}

type cancelSubscriptionResponse struct {
	bundleResponse
	Message string `json:"message"`
}

// Cancel stops renewals. The bundle stays usable until it lapses.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	const op = "handler.subscription.cancel"

	id, err := pathUUID(r, op, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	bundle, err := h.subscriptions.Cancel(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelSubscriptionResponse{
		bundleResponse: newBundleResponse(bundle),
		Message:        "Subscription cancelled. It will remain active until the end of the billing cycle.",
	})
}

type autoRenewRequest struct {
	AutoRenew *bool `json:"autoRenew"`
}

// SetAutoRenew toggles renewal of a bundle.
func (h *SubscriptionHandler) SetAutoRenew(w http.ResponseWriter, r *http.Request) {
	const op = "handler.subscription.set_auto_renew"

	id, err := pathUUID(r, op, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req autoRenewRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.AutoRenew == nil {
		ErrorResponse(w, r, h.logger, domain.NewValidationError(op, "autoRenew", "autoRenew must be a boolean value"))
		return
	}

	bundle, err := h.subscriptions.SetAutoRenew(r.Context(), id, *req.AutoRenew)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBundleResponse(bundle))
}
