package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"painel/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.Config{Level: slog.LevelInfo, Output: buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.RequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/years", nil))

	id := rr.Header().Get(HeaderRequestID)
	if !strings.HasPrefix(id, "req_") || id != seen {
		t.Fatalf("request ID not propagated: header %q, context %q", id, seen)
	}
	out := buf.String()
	if !strings.Contains(out, "HTTP request started") || !strings.Contains(out, "status_code=500") {
		t.Fatalf("missing lifecycle records: %s", out)
	}
	if got := m.GetMetrics(); got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestMiddlewareReusesUpstreamID(t *testing.T) {
	logger := log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
	h := NewMiddleware(logger, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	r.Header.Set(HeaderRequestID, "lb-123")
	h.ServeHTTP(rr, r)
	if got := rr.Header().Get(HeaderRequestID); got != "lb-123" {
		t.Fatalf("expected upstream ID, got %q", got)
	}

	rr = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/years", nil)
	r.Header.Set(HeaderRequestID, "bad id\n")
	h.ServeHTTP(rr, r)
	if got := rr.Header().Get(HeaderRequestID); got == "bad id\n" || !strings.HasPrefix(got, "req_") {
		t.Fatalf("malformed upstream ID should be replaced, got %q", got)
	}
}
