package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's prometheus instruments. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	ClaimSyncTotal    *prometheus.CounterVec
	ClaimSyncDuration prometheus.Histogram
	GuardBlockedTotal *prometheus.CounterVec
	IDsAllocatedTotal *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ClaimSyncTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "claim_sync_total",
			Help:      "Claim synchronizations by outcome (created, updated, skipped, error).",
		}, []string{"outcome"}),

		ClaimSyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "claim_sync_duration_seconds",
			Help:      "Time spent recomputing a claim's billed amount.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),

		GuardBlockedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "blocked_deletes_total",
			Help:      "Deletes rejected because dependent rows exist.",
		}, []string{"entity"}),

		IDsAllocatedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ident",
			Name:      "allocated_total",
			Help:      "Identifiers allocated by kind.",
		}, []string{"kind"}),
	}
}

// Handler serves the collector's registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveSync(outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.ClaimSyncTotal.WithLabelValues(outcome).Inc()
	c.ClaimSyncDuration.Observe(seconds)
}

func (c *Collector) GuardBlocked(entity string) {
	if c == nil {
		return
	}
	c.GuardBlockedTotal.WithLabelValues(entity).Inc()
}

func (c *Collector) IDAllocated(kind string) {
	if c == nil {
		return
	}
	c.IDsAllocatedTotal.WithLabelValues(kind).Inc()
}
