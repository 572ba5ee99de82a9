package http

import (
	"context"
	"net/http"
	"time"

	"painel/internal/log"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the ledger can be reached.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var err error
	if s.counter != nil {
		_, err = s.counter.Count(ctx)
	} else {
		_, err = s.reports.Snapshot(ctx)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.reports.Years(r.Context())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	writeJSON(w, r, http.StatusOK, yearsResponse{Years: years})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	f, err := ParseHistoryFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	h, err := s.reports.History(r.Context(), f)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newHistory(h))
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	from, to, err := ParseDayRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	rep, err := s.reports.Banks(r.Context(), from, to, sanitizeInput(r.URL.Query().Get("bank")))
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newBanks(rep))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	v, granularity, err := ParseTrend(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	rows, err := s.reports.Trend(r.Context(), v, granularity)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTrend(v, granularity, rows))
}

// handleRefresh drops the cached snapshot so the next view reloads it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.reports.Invalidate(r.Context(), "manual refresh")
	w.WriteHeader(http.StatusNoContent)
}
