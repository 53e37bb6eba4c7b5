// Package http provides the HTTP API for the metering and allocation service.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/agencyos/growthmeter/adapters/metrics"
	"github.com/agencyos/growthmeter/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handler serves the usage and budget APIs.
type Handler struct {
	ledger    *app.LedgerService
	allocator *app.AllocatorService
	logger    zerolog.Logger
	metrics   *metrics.Collector
}

// HandlerConfig contains dependencies for the HTTP handler.
type HandlerConfig struct {
	Ledger    *app.LedgerService
	Allocator *app.AllocatorService
	Logger    zerolog.Logger
	// Metrics is optional; nil disables the middleware and /metrics endpoint.
	Metrics *metrics.Collector
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		ledger:    cfg.Ledger,
		allocator: cfg.Allocator,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Router builds the service router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(NewLoggingMiddleware(h.logger))
	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.Health)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/usage", func(r chi.Router) {
			r.Post("/", h.TrackUsage)
			r.Post("/reserve", h.ReserveQuota)
			r.Get("/quota", h.CheckQuota)
			r.Get("/stats", h.UserStats)
			r.Get("/global", h.GlobalStats)
		})
		r.Route("/budget", func(r chi.Router) {
			r.Post("/allocate", h.AllocateBudget)
		})
	})

	return r
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := statusLabel(ww.Status())
			m.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

// NewLoggingMiddleware creates middleware that logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
