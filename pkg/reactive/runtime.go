package reactive

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/pkg/metrics"
)

const tracerName = "github.com/vango-dev/ripple/pkg/reactive"

// defaultTaskBuffer is the capacity of the Dispatch queue.
const defaultTaskBuffer = 256

// Runtime is the execution context shared by every reactive value created
// against it. It replaces process-wide globals: the active-effect slot,
// the dependency store, the scheduler and the microtask queue all live here.
//
// A Runtime is not safe for concurrent use. See Dispatch and Run.
type Runtime struct {
	store     *depStore
	scheduler *Scheduler

	// active is the effect currently executing, nil outside any effect.
	active *Effect

	// shouldTrack is false inside Untracked.
	shouldTrack bool

	microtasks []func()
	tasks      chan func()

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for job and task failures.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics sets the collectors that record flushes and effect runs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithTracer overrides the tracer used for flush spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(rt *Runtime) {
		if tracer != nil {
			rt.tracer = tracer
		}
	}
}

// WithTaskBuffer sets the capacity of the Dispatch queue.
func WithTaskBuffer(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.tasks = make(chan func(), n)
		}
	}
}

// NewRuntime creates an execution context.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		store:       newDepStore(),
		shouldTrack: true,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.tasks == nil {
		rt.tasks = make(chan func(), defaultTaskBuffer)
	}
	rt.scheduler = &Scheduler{rt: rt}
	return rt
}

// Scheduler returns the runtime's job scheduler.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.scheduler
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Metrics returns the runtime's collectors, which may be nil.
func (rt *Runtime) Metrics() *metrics.Metrics {
	return rt.metrics
}

// ActiveEffect returns the effect currently executing, or nil.
func (rt *Runtime) ActiveEffect() *Effect {
	return rt.active
}

// Untracked runs fn without subscribing the active effect to anything fn
// reads.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.shouldTrack
	rt.shouldTrack = false
	defer func() { rt.shouldTrack = prev }()
	fn()
}

// tracking reports whether a read right now would subscribe an effect.
func (rt *Runtime) tracking() bool {
	return rt.shouldTrack && rt.active != nil
}
