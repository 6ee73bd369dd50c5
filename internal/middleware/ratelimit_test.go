package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// RateLimiter Tests
// =============================================================================

func TestRateLimiter_Allow_AtLimit(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, testLogger())
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("192.168.1.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("192.168.1.1") {
		t.Error("6th request should be denied")
	}
	if !rl.Allow("192.168.1.2") {
		t.Error("other keys should have their own budget")
	}
}

func TestRateLimiter_Allow_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, testLogger())
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("k") {
		t.Fatal("second request should be denied")
	}
	if got := rl.TimeUntilReset("k"); got != time.Minute {
		t.Errorf("expected 1m until reset, got %v", got)
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.Allow("k") {
		t.Error("request after window should be allowed")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, testLogger())
	defer rl.Stop()

	rl.Allow("k")
	rl.Reset("k")
	if !rl.Allow("k") {
		t.Error("request after reset should be allowed")
	}
}

// =============================================================================
// Rate Limit Middleware Tests
// =============================================================================

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, testLogger())
	defer rl.Stop()
	wrapped := NewRateLimitMiddleware(rl, nil, testLogger()).Limit(okHandler())

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/chat/users/u1/messages", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec = httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), `"code":"rate_limit"`) {
		t.Errorf("expected rate_limit error body, got %q", rec.Body.String())
	}
}

func TestRateLimitMiddleware_ClientAndUserKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, testLogger())
	defer rl.Stop()

	mux := http.NewServeMux()
	mux.Handle("POST /chat/users/{userId}/messages",
		NewRateLimitMiddleware(rl, ClientAndUserKey, testLogger()).Limit(okHandler()))

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/chat/users/"+user+"/messages", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("alice"); code != http.StatusOK {
		t.Errorf("alice first: expected 200, got %d", code)
	}
	if code := send("bob"); code != http.StatusOK {
		t.Errorf("bob first: expected 200, got %d", code)
	}
	if code := send("alice"); code != http.StatusTooManyRequests {
		t.Errorf("alice second: expected 429, got %d", code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{"forwarded for", "X-Forwarded-For", "203.0.113.7, 10.0.0.1", "10.0.0.1:1", "203.0.113.7"},
		{"real ip", "X-Real-IP", " 198.51.100.2 ", "10.0.0.1:1", "198.51.100.2"},
		{"remote addr", "", "", "192.0.2.1:4000", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
