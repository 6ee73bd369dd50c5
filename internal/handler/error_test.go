package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/chatquota/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestValidationErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	ve := domain.NewValidationError("UserService.Register", "email", "Email is required")

	req := httptest.NewRequest("POST", "/users", nil)
	rec := httptest.NewRecorder()
	ErrorResponse(rec, req, testLogger(), ve)

	body := rec.Body.String()
	if strings.Contains(body, "UserService") || strings.Contains(body, "Register") {
		t.Errorf("response exposes internal operation name: %s", body)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Error.Code != domain.EINVALID {
		t.Errorf("code = %q, want %q", resp.Error.Code, domain.EINVALID)
	}
	if resp.Error.Fields["email"] != "Email is required" {
		t.Errorf("fields = %v, want email error", resp.Error.Fields)
	}
}

func TestErrorResponse_InternalHidesCause(t *testing.T) {
	err := domain.Internal(errors.New("pq: connection refused to 10.0.0.5"), "chat.send", "failed to record message")

	req := httptest.NewRequest("POST", "/chat/users/x/messages", nil)
	rec := httptest.NewRecorder()
	ErrorResponse(rec, req, testLogger(), err)

	body := rec.Body.String()
	if strings.Contains(body, "10.0.0.5") || strings.Contains(body, "chat.send") {
		t.Errorf("response exposes internal details: %s", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Errorf("expected generic message, got: %s", body)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestErrorResponse_Envelope(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	ErrorResponse(rec, req, testLogger(), domain.SubscriptionRequired("quota.evaluate"))

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	var resp errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Error.Code != domain.ESUBSCRIPTIONREQUIRED {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if resp.Error.StatusCode != http.StatusForbidden {
		t.Errorf("statusCode = %d, want 403", resp.Error.StatusCode)
	}
	if resp.Error.Message == "" {
		t.Error("expected a message")
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ESUBSCRIPTIONREQUIRED, http.StatusForbidden},
		{domain.EQUOTAEXCEEDED, http.StatusForbidden},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
