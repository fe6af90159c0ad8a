package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultTimeout     = "timeout"
	ResultBreakerOpen = "breaker_open"
	ResultMalformed   = "malformed"
)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		1, 5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modgate_request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	VerdictTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_verdicts_total",
			Help: "Moderation verdicts by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	StageLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modgate_stage_latency_ms",
			Help:    "Latency of each moderation stage in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"stage"},
	)

	ExternalCallTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modgate_external_calls_total",
			Help: "Calls to external classifiers and vision models by result",
		},
		[]string{"component", "result"},
	)
)

type MetricsConfig struct {
	EnableLatency      bool `mapstructure:"enable_latency"`
	EnableStageLatency bool `mapstructure:"enable_stage_latency"`
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:      true,
		EnableStageLatency: true,
	}
}

var (
	Config   = DefaultMetricsConfig()
	initOnce sync.Once
)

func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	})

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Gatherer() prometheus.Gatherer {
	return registry
}

func ObserveStage(stage string, elapsed time.Duration) {
	if !Config.EnableStageLatency {
		return
	}
	StageLatency.WithLabelValues(stage).Observe(float64(elapsed.Microseconds()) / 1000)
}

func ObserveRequest(route string, elapsed time.Duration) {
	if !Config.EnableLatency {
		return
	}
	RequestLatency.WithLabelValues(route).Observe(float64(elapsed.Microseconds()) / 1000)
}

func RecordExternalCall(component, result string) {
	ExternalCallTotal.WithLabelValues(component, result).Inc()
}

func RecordVerdict(topic, outcome string) {
	VerdictTotal.WithLabelValues(topic, outcome).Inc()
}
