package reactive

import (
	"sync"
	"weak"
)

// dep is the ordered, duplicate-free set of effects subscribed to one
// (target, key) pair or to one Ref or Computed. Effects are held weakly.
type dep struct {
	subs  []weak.Pointer[Effect]
	index map[weak.Pointer[Effect]]struct{}
}

// add subscribes e. It reports whether e was newly added.
func (d *dep) add(e *Effect) bool {
	if d.index == nil {
		d.index = make(map[weak.Pointer[Effect]]struct{})
	}
	if _, ok := d.index[e.self]; ok {
		return false
	}
	d.index[e.self] = struct{}{}
	d.subs = append(d.subs, e.self)
	return true
}

func (d *dep) remove(e *Effect) {
	if _, ok := d.index[e.self]; !ok {
		return
	}
	delete(d.index, e.self)
	for i, wp := range d.subs {
		if wp == e.self {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// snapshot returns the live subscribers in subscription order and drops
// entries whose effect has been reclaimed.
func (d *dep) snapshot() []*Effect {
	if len(d.subs) == 0 {
		return nil
	}
	live := make([]*Effect, 0, len(d.subs))
	kept := d.subs[:0]
	for _, wp := range d.subs {
		e := wp.Value()
		if e == nil {
			delete(d.index, wp)
			continue
		}
		kept = append(kept, wp)
		live = append(live, e)
	}
	clear(d.subs[len(kept):])
	d.subs = kept
	return live
}

func (d *dep) size() int {
	return len(d.subs)
}

// depsMap maps a field name to its subscribers.
type depsMap map[string]*dep

// depStore maps target identity to its dependency map. Keys are
// weak.Pointer values, so the store never extends a target's lifetime.
// When a target is reclaimed its key is queued as stale by a cleanup and
// purged on the next store access.
type depStore struct {
	targets map[any]depsMap

	// objects caches the Object wrapping each target.
	objects map[any]weak.Pointer[Object]

	staleMu sync.Mutex
	stale   []any
}

func newDepStore() *depStore {
	return &depStore{
		targets: make(map[any]depsMap),
		objects: make(map[any]weak.Pointer[Object]),
	}
}

// markStale runs on the cleanup goroutine.
func (s *depStore) markStale(key any) {
	s.staleMu.Lock()
	s.stale = append(s.stale, key)
	s.staleMu.Unlock()
}

func (s *depStore) purge() {
	s.staleMu.Lock()
	stale := s.stale
	s.stale = nil
	s.staleMu.Unlock()

	for _, key := range stale {
		delete(s.targets, key)
		delete(s.objects, key)
	}
}

// lookup returns the dep for (target, key), creating it when create is set.
func (s *depStore) lookup(target any, key string, create bool) *dep {
	s.purge()
	m := s.targets[target]
	if m == nil {
		if !create {
			return nil
		}
		m = make(depsMap)
		s.targets[target] = m
	}
	d := m[key]
	if d == nil && create {
		d = &dep{}
		m[key] = d
	}
	return d
}

// targetCount reports how many targets currently have a dependency map.
func (s *depStore) targetCount() int {
	s.purge()
	return len(s.targets)
}

// track subscribes the active effect to (target, key).
func (rt *Runtime) track(target any, key string) {
	if !rt.tracking() {
		return
	}
	rt.trackDep(rt.store.lookup(target, key, true))
}

// trackDep subscribes the active effect to d and records the back
// reference on the effect.
func (rt *Runtime) trackDep(d *dep) {
	if !rt.tracking() {
		return
	}
	e := rt.active
	if !e.active {
		return
	}
	if d.add(e) {
		e.deps = append(e.deps, d)
	}
}

// trigger notifies the subscribers of (target, key).
func (rt *Runtime) trigger(target any, key string) {
	d := rt.store.lookup(target, key, false)
	if d == nil {
		return
	}
	rt.triggerDep(d)
}

// triggerDep notifies every subscriber of d. The subscriber list is
// snapshotted first so effects that resubscribe while running are not
// visited twice. Computed effects are notified before plain effects so
// any plain effect reading a computed sees it already marked dirty.
func (rt *Runtime) triggerDep(d *dep) {
	effects := d.snapshot()
	for _, e := range effects {
		if e.role == RoleComputed {
			rt.triggerEffect(e)
		}
	}
	for _, e := range effects {
		if e.role != RoleComputed {
			rt.triggerEffect(e)
		}
	}
}

func (rt *Runtime) triggerEffect(e *Effect) {
	if e == rt.active || !e.active {
		return
	}
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}
