// Package metrics exposes Prometheus instrumentation for the ingestion
// engine. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
)

// Config configures the collectors.
type Config struct {
	// Namespace prefixes every metric (default: "displayset").
	Namespace string

	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer

	// Buckets are the ingest duration histogram buckets.
	Buckets []float64
}

// Option configures Config.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// Metrics holds the engine collectors.
type Metrics struct {
	ingestCalls    *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	created        *prometheus.CounterVec
	reused         *prometheus.CounterVec
	groupFailures  *prometheus.CounterVec
	unclaimed      *prometheus.CounterVec
	invalidated    prometheus.Counter
	active         prometheus.Gauge
	cached         prometheus.Gauge
}

// New registers the collectors.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: constants.DefaultMetricsNamespace,
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		ingestCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "ingest_calls_total",
			Help:      "Total number of ingestion calls",
		}, []string{"mode", "status"}),

		ingestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Ingestion call duration in seconds",
			Buckets:   cfg.Buckets,
		}),

		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "display_sets_created_total",
			Help:      "Display sets built and cached",
		}, []string{"handler"}),

		reused: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "display_sets_reused_total",
			Help:      "Cached display sets reused by ingestion",
		}, []string{"handler"}),

		groupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "group_failures_total",
			Help:      "Series groups that failed during ingestion",
		}, []string{"reason"}),

		unclaimed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "unclaimed_partitions_total",
			Help:      "Instance partitions no builder claimed",
		}, []string{"sop_class_uid"}),

		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "metadata_invalidations_total",
			Help:      "Display sets whose backing metadata was invalidated",
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_display_sets",
			Help:      "Display sets in the active working set",
		}),

		cached: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "cached_display_sets",
			Help:      "Display sets in the cache",
		}),
	}
}

// ObserveIngest records one ingestion call.
func (m *Metrics) ObserveIngest(batch bool, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	mode := "single"
	if batch {
		mode = "batch"
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ingestCalls.WithLabelValues(mode, status).Inc()
	m.ingestDuration.Observe(elapsed.Seconds())
}

// Created counts sets built by a handler.
func (m *Metrics) Created(handlerID string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.created.WithLabelValues(handlerID).Add(float64(n))
}

// Reused counts cached sets reused for a handler.
func (m *Metrics) Reused(handlerID string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.reused.WithLabelValues(handlerID).Add(float64(n))
}

// GroupFailed counts a failed series group.
func (m *Metrics) GroupFailed(reason string) {
	if m == nil {
		return
	}
	m.groupFailures.WithLabelValues(reason).Inc()
}

// Unclaimed counts a partition no builder claimed.
func (m *Metrics) Unclaimed(sopClassUID string) {
	if m == nil {
		return
	}
	m.unclaimed.WithLabelValues(sopClassUID).Inc()
}

// Invalidated counts a metadata invalidation.
func (m *Metrics) Invalidated() {
	if m == nil {
		return
	}
	m.invalidated.Inc()
}

// SetSizes records the cache and active list sizes.
func (m *Metrics) SetSizes(cached, active int) {
	if m == nil {
		return
	}
	m.cached.Set(float64(cached))
	m.active.Set(float64(active))
}
