// Package metrics provides Prometheus metrics collection for Growthmeter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for Growthmeter.
type Collector struct {
	// Ledger metrics
	UsageEvents   *prometheus.CounterVec
	QuotaChecks   *prometheus.CounterVec
	QuotaDenials  *prometheus.CounterVec
	Reservations  *prometheus.CounterVec
	CleanupEvents prometheus.Counter

	// Allocation metrics
	AllocationRequests *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Used by tests to avoid duplicate registration on the default registry.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		UsageEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "usage_events_total",
				Help:      "Total usage events recorded",
			},
			[]string{"tool"},
		),
		QuotaChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "quota_checks_total",
				Help:      "Total quota admission checks",
			},
			[]string{"tool", "allowed"},
		),
		QuotaDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "quota_denials_total",
				Help:      "Total denied quota checks and reservations",
			},
			[]string{"tool"},
		),
		Reservations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "quota_reservations_total",
				Help:      "Total atomic quota reservations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		CleanupEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "cleanup_deleted_events_total",
				Help:      "Total usage events deleted by retention cleanup",
			},
		),
		AllocationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "allocation_requests_total",
				Help:      "Total budget allocation requests by mode",
			},
			[]string{"mode"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "growthmeter",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "growthmeter",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}
