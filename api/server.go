/*
server.go - Router construction and HTTP server lifecycle

PURPOSE:
  Builds the chi router with middleware, wires handler routes, and runs the
  HTTP server with graceful shutdown.

MIDDLEWARE STACK (outermost first):
  - RequestID: Tags each request for log correlation
  - Logger: Request logging
  - Recoverer: Converts panics into 500s
  - CORS: Permissive browser access for API clients
  - Metrics: Prometheus request counters and latency histograms
  - Authenticator: JWT bearer tokens, applied to /api only

SEE ALSO:
  - handlers.go: Endpoint implementations
  - auth.go: Token verification
  - metrics.go: Instrumentation
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries everything NewRouter needs beyond the handlers.
type RouterConfig struct {
	JWTSecret       string
	DefaultLocation *time.Location
}

// NewRouter builds the full route tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticator(cfg.JWTSecret, cfg.DefaultLocation))

		r.Get("/me/timezone", h.MyTimezone)

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", h.ListChallenges)
			r.Post("/", h.CreateChallenge)
			r.Get("/{id}", h.GetChallenge)
			r.Post("/{id}/join", h.JoinChallenge)
			r.Delete("/{id}/leave", h.LeaveChallenge)
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Get("/", h.ListEnrollments)
			r.Get("/{id}/progress", h.GetProgress)
			r.Post("/{id}/habits", h.AddHabit)
		})

		r.Route("/habits", func(r chi.Router) {
			r.Post("/{id}/logs", h.LogHabit)
			r.Delete("/{id}/logs/{date}", h.UnlogHabit)
		})

		r.Route("/personal-habits", func(r chi.Router) {
			r.Get("/", h.ListPersonalHabits)
			r.Post("/", h.CreatePersonalHabit)
			r.Delete("/{id}", h.DeletePersonalHabit)
			r.Post("/{id}/archive", h.ArchivePersonalHabit)
			r.Post("/{id}/logs", h.LogPersonalHabit)
			r.Delete("/{id}/logs/{date}", h.UnlogPersonalHabit)
			r.Get("/{id}/analytics", h.PersonalAnalytics)
		})
	})

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer creates a server for the given handler and address.
func NewServer(addr string, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")
	return s.srv.Shutdown(ctx)
}
