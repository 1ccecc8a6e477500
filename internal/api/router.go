// Package api assembles the gateway's HTTP router.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/api/handlers"
	"github.com/drfirst/go-edi/internal/api/middleware"
	"github.com/drfirst/go-edi/internal/cache"
	"github.com/drfirst/go-edi/internal/observability/metrics"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Deps are the router's collaborators. Cache, Queue and Ready are optional.
type Deps struct {
	Service        handlers.Inquirer
	Cache          *cache.EligibilityCache
	Queue          handlers.Queue
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	APIKeys        map[string]string
	CORSOrigins    []string
	Ready          map[string]ReadinessCheck
	Logger         *zap.Logger
	ServiceName    string
}

// NewRouter builds the gateway routes
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.ServiceName == "" {
		d.ServiceName = "edi-gateway"
	}
	if d.MetricsHandler == nil {
		d.MetricsHandler = metrics.Handler()
	}

	inquiries := handlers.NewInquiryHandler(d.Service, d.Cache, d.Queue, logger)
	parser := handlers.NewParseHandler(logger, d.Metrics)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing(d.ServiceName))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"` + d.ServiceName + `"}`))
	})
	r.Get("/ready", readyHandler(d.Ready, logger))
	r.Method(http.MethodGet, "/metrics", d.MetricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(d.APIKeys))
		inquiries.Register(r)
		r.Post("/parse", parser.Parse)
	})
	return r
}

func readyHandler(checks map[string]ReadinessCheck, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				http.Error(w, "not ready: "+name, http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ready"))
	}
}
