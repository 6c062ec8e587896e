package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Upstream fetches are bounded at 20s.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 20000,
	}

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustframe_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	SanitizationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_sanitizations_total",
			Help: "Documents sanitized, by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	SanitizerRemovals = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_sanitizer_removals_total",
			Help: "Elements removed or rewritten by the sanitizer, by kind",
		},
		[]string{"kind"},
	)

	DispatchTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_dispatch_total",
			Help: "Delivery strategies chosen by the dispatcher",
		},
		[]string{"strategy", "fallback"},
	)

	FallbacksTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_fallbacks_total",
			Help: "Requests degraded to a raw iframe, by reason",
		},
		[]string{"reason"},
	)

	UpstreamLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustframe_upstream_latency_ms",
			Help:    "Upstream embed page fetch latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"host", "status"},
	)

	GuardDecisionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustframe_guard_decisions_total",
			Help: "Runtime guard decisions evaluated server side",
		},
		[]string{"guard", "action", "verdict", "blocked"},
	)
)

type MetricsConfig struct {
	EnableLatency         bool // Request latency histogram
	EnableUpstreamLatency bool // Per-host upstream latency (higher cardinality)
	EnablePerRoute        bool // Route label on request counters
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:         true,
		EnableUpstreamLatency: false,
		EnablePerRoute:        true,
	}
}

var (
	Config       MetricsConfig
	registerOnce sync.Once
)

// Initialize sets the active metrics config. Runtime collectors are
// registered on the first call only.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

func Gatherer() prometheus.Gatherer {
	return registry
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
