package observability

import (
	"errors"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "goaltree"

// Metrics holds the prometheus collectors for mutations and HTTP traffic.
type Metrics struct {
	// MutationsTotal counts engine operations.
	// Labels: op (add_root, toggle_checklist, ...), result (ok, not_found, ...)
	MutationsTotal *prometheus.CounterVec

	// MutationDuration measures engine operations including the persist.
	// Labels: op
	MutationDuration *prometheus.HistogramVec

	// RollbacksTotal counts optimistic applies undone after a failed persist.
	// Labels: op
	RollbacksTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts API requests.
	// Labels: method, route, status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration measures API request latency.
	// Labels: method, route
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses the default prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		MutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "mutations_total",
				Help:      "Total goal tree mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		MutationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "mutation_duration_seconds",
				Help:      "Mutation latency including persistence",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"op"},
		),
		RollbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "rollbacks_total",
				Help:      "Optimistic applies undone after a failed persist",
			},
			[]string{"op"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total API requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "API request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ResultLabel classifies err for the result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvariantViolation):
		return "invalid"
	default:
		return "error"
	}
}
