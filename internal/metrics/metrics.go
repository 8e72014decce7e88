// Package metrics exposes Prometheus metrics for operation lifecycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/filingctl/internal/operation"
)

// Operations collects per-kind operation metrics on a private registry.
// It implements operation.Observer.
type Operations struct {
	registry *prometheus.Registry

	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
	stale    *prometheus.CounterVec
}

// NewOperations creates the collectors and registers them.
func NewOperations() *Operations {
	registry := prometheus.NewRegistry()

	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filingctl",
			Name:      "operation_total",
			Help:      "Completed operations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filingctl",
			Name:      "operation_duration_seconds",
			Help:      "Service call duration in seconds by operation kind.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)
	inFlight := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "filingctl",
			Name:      "operation_in_flight",
			Help:      "Service calls currently outstanding by operation kind.",
		},
		[]string{"kind"},
	)
	stale := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filingctl",
			Name:      "stale_completions_total",
			Help:      "Completions discarded because a later invocation superseded them.",
		},
		[]string{"kind"},
	)

	registry.MustRegister(total, duration, inFlight, stale)

	return &Operations{
		registry: registry,
		total:    total,
		duration: duration,
		inFlight: inFlight,
		stale:    stale,
	}
}

// Registry returns the private registry.
func (m *Operations) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Operations) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OperationStarted implements operation.Observer.
func (m *Operations) OperationStarted(kind operation.Kind, _ uint64) {
	m.inFlight.WithLabelValues(string(kind)).Inc()
}

// OperationCompleted implements operation.Observer.
func (m *Operations) OperationCompleted(c operation.Completion) {
	kind := string(c.Kind)

	m.inFlight.WithLabelValues(kind).Dec()
	m.total.WithLabelValues(kind, string(c.Outcome)).Inc()
	m.duration.WithLabelValues(kind).Observe(c.Duration.Seconds())
	if c.Stale {
		m.stale.WithLabelValues(kind).Inc()
	}
}
