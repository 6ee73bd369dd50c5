package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/users/u-123", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	mw.Handler(mux).ServeHTTP(rec, req)

	logOutput := buf.String()
	for _, want := range []string{"method=GET", "path=/users/u-123", "status=404", "ip=192.168.1.1", "user_id=u-123", `route="GET /users/{userId}"`} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("log should contain %s, got: %s", want, logOutput)
		}
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected request ID header")
	}
}

func TestRequestLoggingMiddleware_EchoesRequestID(t *testing.T) {
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

	req := httptest.NewRequest("GET", "/chat/messages/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	mw.Handler(okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected echoed request ID, got %q", got)
	}
	if !strings.Contains(buf.String(), "request_id=abc-123") {
		t.Errorf("log should contain request id, got: %s", buf.String())
	}
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

	req := httptest.NewRequest("GET", "/dev/subscriptions/x/details?token=s3cret&days=2", nil)
	mw.Handler(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	logOutput := buf.String()
	if strings.Contains(logOutput, "s3cret") {
		t.Errorf("log should not contain secret, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "days=2") {
		t.Errorf("log should keep safe params, got: %s", logOutput)
	}
}

func TestRequestLoggingMiddleware_ExcludesHealthAndMetrics(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		var buf bytes.Buffer
		mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

		mw.Handler(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))

		if buf.Len() != 0 {
			t.Errorf("%s should not be logged, got: %s", path, buf.String())
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	mw := NewRecoverMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

	wrapped := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Internal server error"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic log, got: %s", buf.String())
	}
}

func TestStack_Order(t *testing.T) {
	var order []string
	mk := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Stack(mk("a"), mk("b"))(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "a,b" {
		t.Errorf("expected a,b got %v", order)
	}
}
