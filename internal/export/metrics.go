package export

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the export metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vango").
	Namespace string

	// Subsystem is the metrics subsystem (default: "export").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures the export metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// Metrics records export activity. A nil *Metrics records nothing.
type Metrics struct {
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	dedupSkips     prometheus.Counter
	filesWritten   *prometheus.CounterVec
	bytesWritten   prometheus.Counter
}

// NewMetrics registers the export metrics with reg.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "vango",
		Subsystem: "export",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(reg)

	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of route renders by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Route render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		dedupSkips: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dedup_skips_total",
			Help:        "Total number of renders skipped because the output path was already claimed",
			ConstLabels: config.ConstLabels,
		}),

		filesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "files_written_total",
			Help:        "Total number of exported files written by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_written_total",
			Help:        "Total number of bytes written to the export",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) observeRender(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.renders.WithLabelValues(status).Inc()
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) dedupSkip() {
	if m == nil {
		return
	}
	m.dedupSkips.Inc()
}

func (m *Metrics) fileWritten(kind FileKind, size int) {
	if m == nil {
		return
	}
	m.filesWritten.WithLabelValues(string(kind)).Inc()
	m.bytesWritten.Add(float64(size))
}
