// Package api provides the HTTP server for watchearn.
// It exposes the profile, catalog, ledger, withdrawal and dashboard
// operations as a JSON API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/app/catalog"
	"github.com/watchearn-network/watchearn/internal/app/dashboard"
	"github.com/watchearn-network/watchearn/internal/app/ledger"
	"github.com/watchearn-network/watchearn/internal/app/profile"
	"github.com/watchearn-network/watchearn/internal/app/withdrawal"
)

// Version is reported by /api/version and set by the build.
var Version = "0.1.0"

// Services groups the application services the API serves.
type Services struct {
	Authority   *authority.Service
	Profiles    *profile.Service
	Catalog     *catalog.Service
	Ledger      *ledger.Service
	Withdrawals *withdrawal.Service
	Dashboard   *dashboard.Service
}

// Pinger reports storage health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the watchearn HTTP API server.
type Server struct {
	svc            Services
	auth           *TokenAuth
	limiter        *RateLimiter // nil disables rate limiting
	health         Pinger
	log            *slog.Logger
	metricsEnabled bool
	requestTimeout time.Duration
}

// NewServer creates a new API server.
func NewServer(svc Services, auth *TokenAuth, log *slog.Logger) *Server {
	return &Server{
		svc:            svc,
		auth:           auth,
		log:            log.With("component", "api"),
		requestTimeout: 30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetRateLimiter limits mutating routes per caller.
func (s *Server) SetRateLimiter(rl *RateLimiter) { s.limiter = rl }

// SetHealthCheck makes /health report storage reachability.
func (s *Server) SetHealthCheck(p Pinger) { s.health = p }

// SetRequestTimeout bounds each request's context.
func (s *Server) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		s.requestTimeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(s.auth.Middleware)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})
		r.Get("/policy", s.handlePolicy)

		// Reads
		r.Get("/profile", s.handleGetProfile)
		r.Get("/users/{identity}/profile", s.handleGetUserProfile)
		r.Get("/role", s.handleGetRole)
		r.Get("/role/admin", s.handleIsAdmin)
		r.Get("/ads", s.handleListAds)
		r.Get("/ads/{id}", s.handleGetAd)
		r.Get("/watches", s.handleWatches)
		r.Get("/journal", s.handleJournal)
		r.Get("/withdrawals", s.handleWithdrawalHistory)
		r.Get("/admin/withdrawals", s.handleAllWithdrawals)
		r.Get("/dashboard", s.handleDashboard)

		// Mutations
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Handler)
			}
			r.Post("/profile", s.handleCreateProfile)
			r.Put("/users/{identity}/role", s.handleAssignRole)
			r.Post("/initialize", s.handleInitialize)
			r.Post("/ads/{id}/claim", s.handleClaim)
			r.Post("/withdrawals", s.handleRequestWithdrawal)
			r.Post("/admin/withdrawals/{id}/approve", s.handleApprove)
			r.Post("/admin/withdrawals/{id}/reject", s.handleReject)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "no such route", false)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
