package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/api/handlers"
	"logistics-scheduler-service/internal/platform/obs"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// metricsHandler is mounted at /metrics when non-nil.
func NewRouter(
	optimizer handlers.RouteOptimizer,
	loc *time.Location,
	logger zerolog.Logger,
	metrics obs.Metrics,
	metricsHandler http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Optimizer: optimizer, Location: loc}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/operations", routeHandler.Operations)
	mux.HandleFunc("/routes/rentals", routeHandler.Rentals)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	if metrics == nil {
		metrics = obs.NoopMetrics{}
	}
	return requestMiddleware(logger, metrics, mux)
}
