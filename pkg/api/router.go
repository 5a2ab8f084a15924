// Package api implements the xrealmd HTTP surface: health probes,
// Prometheus metrics, the host-facing decision endpoint, and ACL
// attribute administration.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crossrealm/xrealmd/internal/logger"
	"github.com/crossrealm/xrealmd/pkg/api/handlers"
	"github.com/crossrealm/xrealmd/pkg/authz"
)

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health           — liveness probe
//   - GET /health/ready     — readiness probe
//   - GET /metrics          — Prometheus metrics (when enabled)
//   - POST /v1/decision     — cross-realm authorization decision
//   - GET/PUT/DELETE /v1/attributes — ACL attribute administration
func NewRouter(policy authz.TGSPolicy, admin authz.AttributeAdmin, metrics bool) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(policy, admin)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	decisionHandler := handlers.NewDecisionHandler(policy)
	attrHandler := handlers.NewAttributesHandler(admin)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/decision", decisionHandler.Decide)
		r.Get("/attributes", attrHandler.List)
		r.Put("/attributes", attrHandler.Set)
		r.Delete("/attributes", attrHandler.Delete)
	})

	return r
}

// requestLogger logs requests through the internal logger: request start
// at DEBUG, completion with status and duration at INFO.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			logger.KeyDuration, float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}
