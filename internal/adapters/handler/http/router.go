package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	// HealthCheck reports whether the database is reachable.
	HealthCheck func(ctx context.Context) error
}

type Handlers struct {
	Auth      *Authenticator
	Elections *ElectionHandler
	Votes     *VoteHandler
	Admin     *AdminHandler
}

func NewHandler(cfg RouterConfig, h Handlers) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", healthz(cfg.HealthCheck))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Auth.Middleware)

		r.Route("/elections", func(r chi.Router) {
			r.Get("/", h.Elections.ListElections)
			r.Get("/{id}", h.Elections.GetElection)
			r.Get("/{id}/results", h.Elections.GetResults)
			r.Post("/{id}/votes", h.Votes.SubmitVote)
			r.Get("/{id}/vote-status", h.Votes.GetVoteStatus)
		})

		r.Route("/admin/elections", func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)
			r.Post("/", h.Admin.CreateElection)
			r.With(h.Auth.RequireSuperuser).Post("/{id}/anonymize", h.Admin.AnonymizeElection)
			r.Post("/{id}/{action}", h.Admin.TransitionElection)
			r.Put("/{id}/hidden", h.Admin.SetHidden)
		})
	})

	return r
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request handled",
					"event", "elections_http_request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
