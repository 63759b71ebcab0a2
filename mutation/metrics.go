package mutation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a Coordinator.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "feed").
	Namespace string

	// Subsystem is the metrics subsystem (default: "mutation").
	Subsystem string

	// Buckets are the histogram buckets for gateway round trips.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "feed",
		Subsystem: "mutation",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors updated by a Coordinator.
type Metrics struct {
	runs           *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	patchedEntries *prometheus.CounterVec
}

// NewMetrics registers the coordinator collectors.
//
// Metrics collected:
//   - feed_mutation_runs_total: mutations by type and outcome kind
//   - feed_mutation_gateway_duration_seconds: gateway round trip by type
//   - feed_mutation_patched_entries_total: cache entries changed by type
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "runs_total",
			Help:      "Total number of mutations run by type and outcome",
		}, []string{"type", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "gateway_duration_seconds",
			Help:      "Mutation gateway round trip in seconds",
			Buckets:   config.Buckets,
		}, []string{"type"}),

		patchedEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "patched_entries_total",
			Help:      "Total number of cache entries changed by confirmed mutations",
		}, []string{"type"}),
	}
}

func (m *Metrics) observeRun(t Type, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(t), KindOf(err).String()).Inc()
	m.duration.WithLabelValues(string(t)).Observe(elapsed.Seconds())
}

func (m *Metrics) observePatched(t Type, n int) {
	if m == nil || n == 0 {
		return
	}
	m.patchedEntries.WithLabelValues(string(t)).Add(float64(n))
}
