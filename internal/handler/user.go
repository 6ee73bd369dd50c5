// This file implements the user endpoints.
//
// Routes handled:
//   - POST /users                  -> Create
//   - GET  /users/{userId}         -> Get
//   - GET  /users/{userId}/usage   -> Usage
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/service"
)

// UserHandler handles user HTTP requests.
type UserHandler struct {
	users  service.UserService
	quota  service.QuotaService
	logger *slog.Logger
	now    func() time.Time
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, quota service.QuotaService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		quota:  quota,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers user routes on the provided mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /users", h.Create)
	mux.HandleFunc("GET /users/{userId}", h.Get)
	mux.HandleFunc("GET /users/{userId}/usage", h.Usage)
}

type createUserRequest struct {
	Email string `json:"email"`
}

// Create registers a user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.user.create"

	var req createUserRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.users.Create(r.Context(), domain.CreateUserParams{Email: req.Email})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// Get returns one user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.user.get"

	id, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// Usage returns the free allotment of the current month.
func (h *UserHandler) Usage(w http.ResponseWriter, r *http.Request) {
	const op = "handler.user.usage"

	id, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.users.Get(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	free, err := h.quota.FreeQuota(r.Context(), id, h.now())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newFreeQuotaResponse(free))
}
