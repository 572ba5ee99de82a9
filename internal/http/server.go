// Package http serves the reporting views as JSON.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"painel/internal/ledger"
	"painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/services"
)

// refreshLimit bounds POST /api/snapshot/refresh per client and minute.
const refreshLimit = 6

type Server struct {
	http.Server
	reports *services.ReportService
	counter ledger.Counter
	logger  *log.Logger

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires the JSON API. counter may be nil, in which case readiness
// only checks that a snapshot can be loaded.
func NewServer(addr string, reports *services.ReportService, counter ledger.Counter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		reports:  reports,
		counter:  counter,
		logger:   logger.WithComponent(log.ComponentHTTP),
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{Requests: refreshLimit, Window: time.Minute}),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/years", s.handleYears)
	mux.HandleFunc("GET /api/dashboard/overview", s.handleOverview)
	mux.HandleFunc("GET /api/dashboard/comparison", s.handleComparison)
	mux.HandleFunc("GET /api/dashboard/flows", s.handleFlows)
	mux.HandleFunc("GET /api/dashboard/accounts", s.handleAccounts)
	mux.HandleFunc("GET /api/dashboard/suppliers", s.handleSuppliers)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/banks", s.handleBanks)
	mux.HandleFunc("GET /api/banks/trend", s.handleTrend)
	mux.HandleFunc("POST /api/snapshot/refresh", s.handleRefresh)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited, http.MethodPost)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = log.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
