package http

import (
	"net/http"

	"painel/internal/log"
)

// Dashboard tabs. Year-bounded views read start_year and end_year; the
// period comparison always covers the whole ledger.

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	yr, err := ParseYearRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	ov, err := s.reports.Overview(r.Context(), yr)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newOverview(ov))
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	kind, limit, err := ParseComparison(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	c, err := s.reports.Comparison(r.Context(), kind, limit)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newComparison(c))
}

func (s *Server) handleFlows(w http.ResponseWriter, r *http.Request) {
	yr, err := ParseYearRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	f, err := s.reports.Flows(r.Context(), yr)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newFlows(f))
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	yr, err := ParseYearRange(q)
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	a, err := s.reports.Accounts(r.Context(), yr, sanitizeInput(q.Get("account")), sanitizeInput(q.Get("subaccount")))
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newAccounts(a))
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	yr, err := ParseYearRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpParse, err)
		return
	}
	rows, err := s.reports.Suppliers(r.Context(), yr)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSuppliers(rows))
}
