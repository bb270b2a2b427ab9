package reactive

import "weak"

// Role distinguishes effects that back a Computed from ordinary effects.
// Computed effects are notified first on every trigger.
type Role uint8

const (
	RolePlain Role = iota
	RoleComputed
)

// String returns the role name used in metrics labels.
func (r Role) String() string {
	if r == RoleComputed {
		return "computed"
	}
	return "plain"
}

// Effect is a re-runnable computation. Each run records the reactive
// values it reads; a later write to any of them runs the effect again, or
// calls its scheduler hook when one is set.
type Effect struct {
	id   uint64
	name string
	rt   *Runtime
	fn   func()
	role Role

	// scheduler, when set, is called instead of re-running the effect.
	scheduler func(*Effect)

	// deps are the dependency sets this effect is subscribed to.
	deps []*dep

	active  bool
	running int

	self weak.Pointer[Effect]
}

// EffectOption configures an Effect.
type EffectOption func(*effectConfig)

type effectConfig struct {
	lazy      bool
	scheduler func(*Effect)
	name      string
}

// Lazy suppresses the initial run. The effect tracks nothing until Run is
// called.
func Lazy() EffectOption {
	return func(c *effectConfig) {
		c.lazy = true
	}
}

// WithScheduler sets the hook called instead of re-running the effect when
// one of its dependencies changes.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(c *effectConfig) {
		c.scheduler = fn
	}
}

// EffectName labels the effect in logs.
func EffectName(name string) EffectOption {
	return func(c *effectConfig) {
		c.name = name
	}
}

// NewEffect creates an effect and, unless Lazy is given, runs it once.
//
// The dependency store holds effects weakly: the caller must keep the
// returned *Effect reachable for as long as the effect should stay live.
func NewEffect(rt *Runtime, fn func(), opts ...EffectOption) *Effect {
	var cfg effectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	e := newEffect(rt, fn, RolePlain, cfg.scheduler)
	e.name = cfg.name
	if !cfg.lazy {
		e.Run()
	}
	return e
}

func newEffect(rt *Runtime, fn func(), role Role, scheduler func(*Effect)) *Effect {
	e := &Effect{
		id:        nextID(),
		rt:        rt,
		fn:        fn,
		role:      role,
		scheduler: scheduler,
		active:    true,
	}
	e.self = weak.Make(e)
	return e
}

// ID returns the effect's unique identifier.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the label given with EffectName.
func (e *Effect) Name() string {
	return e.name
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

// Run executes the effect, replacing its subscriptions with the values
// read during this run. The previously active effect is restored
// afterwards, also when fn panics. A stopped effect runs fn without
// tracking.
func (e *Effect) Run() {
	if !e.active {
		e.fn()
		return
	}

	rt := e.rt
	prevActive := rt.active
	prevTrack := rt.shouldTrack

	e.cleanupDeps()
	rt.active = e
	rt.shouldTrack = true
	e.running++
	defer func() {
		e.running--
		rt.active = prevActive
		rt.shouldTrack = prevTrack
	}()

	rt.metrics.EffectRun(e.role.String())
	e.fn()
}

// Stop unsubscribes the effect from everything it tracks. A stopped effect
// is never notified again. Stopping an effect that is currently running
// does not abort that run.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanupDeps()
	e.active = false
}

// Running reports whether the effect is somewhere on the run stack.
func (e *Effect) Running() bool {
	return e.running > 0
}

func (e *Effect) cleanupDeps() {
	for _, d := range e.deps {
		d.remove(e)
	}
	clear(e.deps)
	e.deps = e.deps[:0]
}
