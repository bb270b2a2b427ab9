// Package metrics exposes Prometheus collectors for the reactive scheduler
// and the tree reconciler.
//
// A nil *Metrics is valid and records nothing, so instrumented code never
// needs to check whether metrics were configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "ripple").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush batch sizes.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the batch-size histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "ripple",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors.
type Metrics struct {
	flushes      prometheus.Counter
	jobsRun      prometheus.Counter
	jobPanics    prometheus.Counter
	batchSize    prometheus.Histogram
	effectRuns   *prometheus.CounterVec
	hostOps      *prometheus.CounterVec
	renders      prometheus.Counter
	renderErrors prometheus.Counter
	moves        prometheus.Counter
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		flushes:   counter("scheduler_flushes_total", "Total number of scheduler flushes"),
		jobsRun:   counter("scheduler_jobs_total", "Total number of deduplicated jobs executed"),
		jobPanics: counter("scheduler_job_panics_total", "Total number of jobs that panicked during a flush"),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_batch_size",
			Help:        "Number of deduplicated jobs per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions by role",
			ConstLabels: config.ConstLabels,
		}, []string{"role"}),
		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Total number of host adapter operations issued by the reconciler",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
		renders:      counter("renders_total", "Total number of root render passes"),
		renderErrors: counter("render_errors_total", "Total number of component renders that panicked"),
		moves:        counter("reconcile_moves_total", "Total number of nodes physically moved by the keyed diff"),
	}
}

// FlushDone records a flush that executed n deduplicated jobs.
func (m *Metrics) FlushDone(n int) {
	if m == nil {
		return
	}
	m.flushes.Inc()
	m.jobsRun.Add(float64(n))
	m.batchSize.Observe(float64(n))
}

// JobPanicked records a job that panicked.
func (m *Metrics) JobPanicked() {
	if m == nil {
		return
	}
	m.jobPanics.Inc()
}

// EffectRun records an effect execution for the given role.
func (m *Metrics) EffectRun(role string) {
	if m == nil {
		return
	}
	m.effectRuns.WithLabelValues(role).Inc()
}

// HostOp records a host adapter operation.
func (m *Metrics) HostOp(op string) {
	if m == nil {
		return
	}
	m.hostOps.WithLabelValues(op).Inc()
}

// Moved records a physical move issued by the keyed diff.
func (m *Metrics) Moved() {
	if m == nil {
		return
	}
	m.moves.Inc()
}

// Rendered records a root render pass.
func (m *Metrics) Rendered() {
	if m == nil {
		return
	}
	m.renders.Inc()
}

// RenderFailed records a component render that panicked.
func (m *Metrics) RenderFailed() {
	if m == nil {
		return
	}
	m.renderErrors.Inc()
}
