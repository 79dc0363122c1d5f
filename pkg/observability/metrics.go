package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metrics holds the engine collectors. Each instance owns its registry so
// that several engines (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Rewrites         *prometheus.CounterVec
	StatesDiscovered *prometheus.CounterVec
	Solutions        *prometheus.CounterVec
	StateDepth       *prometheus.HistogramVec
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Rewrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_rewrites_total",
				Help: "Total number of equation and rule applications",
			},
			[]string{"module", "kind", "label"},
		),
		StatesDiscovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_search_states_total",
				Help: "Total number of search states discovered",
			},
			[]string{"module"},
		),
		Solutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_search_solutions_total",
				Help: "Total number of search solutions reported",
			},
			[]string{"module"},
		),
		StateDepth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "espalier_search_state_depth",
				Help:    "Depth of discovered search states",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"module"},
		),
	}
	m.registry.MustRegister(m.Rewrites, m.StatesDiscovered, m.Solutions, m.StateDepth)
	return m
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRewrite: func(_ context.Context, e *domain.RewriteEvent) {
			m.Rewrites.WithLabelValues(e.Module, string(e.Type), e.Label).Inc()
		},
		OnStateDiscovered: func(_ context.Context, e *domain.StateEvent) {
			m.StatesDiscovered.WithLabelValues(e.Module).Inc()
			m.StateDepth.WithLabelValues(e.Module).Observe(float64(e.Depth))
		},
		OnSolution: func(_ context.Context, e *domain.StateEvent) {
			m.Solutions.WithLabelValues(e.Module).Inc()
		},
	}
}
