// Package api provides the HTTP server for QuestDo. It exposes the
// gamification REST API consumed by the mobile and web clients.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/app/gamification"
	"github.com/questdo/questdo/internal/app/streak"
	"github.com/questdo/questdo/internal/domain"
	"github.com/questdo/questdo/internal/health"
)

// Server is the QuestDo HTTP API server.
type Server struct {
	users          domain.UserStore
	badges         domain.BadgeStore
	ledger         domain.LedgerStore
	orch           *gamification.Orchestrator
	streaks        *streak.Service
	log            *logrus.Entry
	version        string
	metricsEnabled bool
	checker        *health.Checker
}

// NewServer creates a new API server.
func NewServer(users domain.UserStore, badges domain.BadgeStore, ledger domain.LedgerStore, orch *gamification.Orchestrator, streaks *streak.Service, version string, log *logrus.Logger) *Server {
	return &Server{
		users:   users,
		badges:  badges,
		ledger:  ledger,
		orch:    orch,
		streaks: streaks,
		version: version,
		log:     log.WithField("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches the periodic health checker to the /health endpoint.
func (s *Server) SetHealth(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status := http.StatusOK
		state := "ok"
		if !s.checker.IsHealthy() {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": state,
			"checks": s.checker.Statuses(),
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", s.handleCreateUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/progression", s.handleProgression)
			r.Get("/streak", s.handleStreak)
			r.Get("/badges", s.handleBadges)
			r.Get("/xp/history", s.handleXPHistory)
			r.Post("/tasks/complete", s.handleCompleteTask)
			r.Post("/habits/{habitID}/checkin", s.handleCheckIn)
			r.Delete("/habits/{habitID}/checkin", s.handleUndoCheckIn)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
