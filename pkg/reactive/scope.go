package reactive

import "github.com/vango-dev/ripple/internal/errors"

// Scope owns effects and cleanups. Because the dependency store only holds
// effects weakly, a Scope is what keeps a component's effects alive; when
// the Scope is disposed they are stopped.
//
// Scopes form a hierarchy: disposing a scope disposes its children first.
type Scope struct {
	id       uint64
	rt       *Runtime
	parent   *Scope
	children []*Scope
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewScope creates a scope registered as a child of parent. A nil parent
// creates a root scope.
func NewScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{id: nextID(), rt: rt, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Effect creates an effect owned by the scope. It panics if the scope is
// disposed.
func (s *Scope) Effect(fn func(), opts ...EffectOption) *Effect {
	if s.disposed {
		panic(errors.New(errors.ErrScopeDisposed))
	}
	e := NewEffect(s.rt, fn, opts...)
	s.effects = append(s.effects, e)
	return e
}

// Adopt makes the scope the owner of an existing effect.
func (s *Scope) Adopt(e *Effect) {
	if s.disposed {
		e.Stop()
		return
	}
	s.effects = append(s.effects, e)
}

// Watch is Watch with any-typed values, owned by the scope.
func (s *Scope) Watch(getter func() any, cb func(newVal, oldVal any), opts ...WatchOption) StopFunc {
	if s.disposed {
		panic(errors.New(errors.ErrScopeDisposed))
	}
	stop := Watch(s.rt, getter, cb, opts...)
	s.cleanups = append(s.cleanups, stop)
	return stop
}

// OnCleanup registers fn to run when the scope is disposed. On a disposed
// scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Dispose disposes children in reverse order, stops owned effects, then
// runs cleanups in reverse registration order. It is idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := s.effects
	s.effects = nil
	for _, e := range effects {
		e.Stop()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
