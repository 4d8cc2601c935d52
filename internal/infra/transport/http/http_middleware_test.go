package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	context_ "github.com/otebot/otebot-api/internal/infra/context"
	"github.com/otebot/otebot-api/internal/infra/logging"
	http_ "github.com/otebot/otebot-api/internal/infra/transport/http"
)

//nolint:paralleltest
func TestCORSMiddleware(t *testing.T) {
	nextCalled := false

	handler := http_.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("sets headers and forwards", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if !nextCalled {
			t.Error("next handler not called")
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		nextCalled = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))

		if nextCalled {
			t.Error("next handler called for preflight")
		}
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("Access-Control-Allow-Methods not set on preflight")
		}
	})
}

//nolint:paralleltest
func TestRescueingMiddleware(t *testing.T) {
	handler := http_.RescueingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), logging.NewNopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp.Error != "internal server error" {
		t.Errorf("error = %q, want generic message", errResp.Error)
	}
}

//nolint:paralleltest
func TestTracingMiddleware(t *testing.T) {
	var gotTraceID string

	handler := http_.TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID, _ = context_.TraceIDFromContext(r.Context())
	}))

	t.Run("uses incoming request id header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(http_.TraceIDHeader, "trace-123")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if gotTraceID != "trace-123" {
			t.Errorf("trace ID = %q, want %q", gotTraceID, "trace-123")
		}
	})

	t.Run("generates id when header absent", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if gotTraceID == "" {
			t.Error("trace ID not generated")
		}
	})
}
