// Package httptransport composes the HTTP surface: middleware chain, presence
// endpoints, health and metrics. Business logic stays in the presence services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meeshy/internal/platform/middleware"
	"meeshy/internal/presence/handler"
)

// Pinger reports backing-store liveness for the health endpoint. A nil Pinger
// means the gateway runs without a persistent store and is healthy on its own.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter wires all public endpoints.
func NewRouter(presence *handler.Handler, db Pinger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	presence.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("store unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
