package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{Level: level, Component: ComponentHTTP, Output: buf}), buf
}

func TestLoggerTagsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("hello", "rows", 3)
	logger.WithComponent(ComponentCache).Warn("purged")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "rows=3") {
		t.Fatalf("missing component or field: %s", out)
	}
	if !strings.Contains(out, "component=cache") {
		t.Fatalf("WithComponent did not switch component: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got component %q", l.Component())
	}

	logger, buf := newBufferLogger(slog.LevelInfo)
	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestID(r.Context(), "req_1")
		got = FromContext(ctx)
		got.InfoContext(ctx, "inside")
		if RequestID(ctx) != "req_1" {
			t.Errorf("request ID not stored")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/years", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("middleware did not install logger")
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("request ID missing from record: %s", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{500, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := newBufferLogger(slog.LevelDebug)
		sl := NewStructuredLogger(logger)
		r := httptest.NewRequest(http.MethodGet, "/api/history?year=2024", nil)

		sl.LogHTTPEnd(context.Background(), r, tt.status, 12, "10.0.0.1")

		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("status %d: expected %s in %s", tt.status, tt.level, buf.String())
		}
	}
}

func TestLogFieldsToSliceIsOrdered(t *testing.T) {
	got := NewFields().WithRows(2).WithError(errors.New("boom")).WithYearRange(2022, 0).ToSlice()
	want := []any{FieldError, "boom", FieldRows, 2, FieldStartYear, 2022}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
