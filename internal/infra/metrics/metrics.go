package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomePartial  = "partial"
	OutcomeFatal    = "fatal"
	OutcomeRejected = "rejected"
)

// Metrics holds the collectors for one process. Collectors live in a private
// registry rather than prometheus.DefaultRegistry so tests can build as many
// instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	imageRequests *prometheus.CounterVec
	exports       *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carousel_generation_runs_total",
				Help: "Total number of generation runs, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		imageRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carousel_image_requests_total",
				Help: "Total number of per-slide image requests, partitioned by result.",
			},
			[]string{"result"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carousel_exports_total",
				Help: "Total number of slide exports, partitioned by kind and result.",
			},
			[]string{"kind", "result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "carousel_generation_duration_seconds",
				Help:    "Wall time of generation runs that reached the text service.",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
			},
		),
	}
}

func (m *Metrics) ObserveRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		m.runDuration.Observe(seconds)
	}
}

func (m *Metrics) ImageRequest(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.imageRequests.WithLabelValues("ok").Inc()
		return
	}
	m.imageRequests.WithLabelValues("failed").Inc()
}

func (m *Metrics) Export(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.exports.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
