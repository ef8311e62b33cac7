package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus instrumentation for the server and the
// reactive groups it hosts. It implements reactive.Observer.
type Metrics struct {
	registry *prometheus.Registry

	recomputes      *prometheus.CounterVec
	recomputeTiming *prometheus.HistogramVec
	rejected        *prometheus.CounterVec
	sessions        prometheus.Gauge
	requests        *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gapminder",
			Name:      "slot_recomputes_total",
			Help:      "Chart slot computations, by tab and slot.",
		}, []string{"tab", "slot"}),
		recomputeTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gapminder",
			Name:      "slot_recompute_seconds",
			Help:      "Time spent computing one chart slot.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"tab"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gapminder",
			Name:      "selections_rejected_total",
			Help:      "Control events rejected, by tab and declared signal. Undeclared signals count as \"unknown\".",
		}, []string{"tab", "signal"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gapminder",
			Name:      "sessions_active",
			Help:      "Live dashboard sessions.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gapminder",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		m.recomputes,
		m.recomputeTiming,
		m.rejected,
		m.sessions,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SlotRecomputed implements reactive.Observer.
func (m *Metrics) SlotRecomputed(tab, slot string, elapsed time.Duration) {
	m.recomputes.WithLabelValues(tab, slot).Inc()
	m.recomputeTiming.WithLabelValues(tab).Observe(elapsed.Seconds())
}

// SelectionRejected implements reactive.Observer.
func (m *Metrics) SelectionRejected(tab, signal string) {
	m.rejected.WithLabelValues(tab, signal).Inc()
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
