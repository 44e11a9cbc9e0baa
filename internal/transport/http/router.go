// Package httptransport assembles the bridge's HTTP surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verifybridge/pkg/platform/httputil"
	"verifybridge/pkg/platform/middleware/metadata"
	"verifybridge/pkg/platform/middleware/requestid"
	"verifybridge/pkg/platform/middleware/requesttime"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type RouterConfig struct {
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	// Checks are run by /healthz; keys name the dependency.
	Checks map[string]HealthChecker
}

// NewRouter wires middleware, health, metrics and the given route groups.
func NewRouter(cfg RouterConfig, registrars ...Registrar) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthHandler(cfg.Checks, cfg.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}

func healthHandler(checks map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	}
}
