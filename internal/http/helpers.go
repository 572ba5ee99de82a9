package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"painel/internal/log"
	"painel/internal/reporting"
)

// errBadParam marks a malformed query parameter.
var errBadParam = errors.New("invalid parameter")

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: log.RequestID(r.Context())})
}

// fail maps err to a status: parameter and selector errors are the caller's
// fault, everything else is logged and reported as 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, reporting.ErrUnknownPeriod),
		errors.Is(err, reporting.ErrUnknownValue),
		errors.Is(err, reporting.ErrUnknownDimension):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		logger := log.FromContext(r.Context()).WithComponent(log.ComponentReporting)
		log.NewStructuredLogger(logger).LogError(r.Context(), "Report failed", err, op, nil)
		writeError(w, r, http.StatusInternalServerError, "failed to build report")
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}
