package reactive

// Computed is a cached derivation. The getter runs lazily on the first Get
// after any of its inputs changed; until then Get returns the cached value.
type Computed[T any] struct {
	rt     *Runtime
	dep    dep
	effect *Effect
	getter func() T
	value  T
	dirty  bool
}

// NewComputed creates a computed value. The getter does not run until the
// first Get.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{rt: rt, getter: getter, dirty: true}
	c.effect = newEffect(rt, func() {
		c.value = c.getter()
	}, RoleComputed, func(*Effect) {
		if !c.dirty {
			c.dirty = true
			rt.triggerDep(&c.dep)
		}
	})
	return c
}

// Get returns the value, recomputing it first when an input changed, and
// subscribes the active effect.
func (c *Computed[T]) Get() T {
	c.rt.trackDep(&c.dep)
	c.refresh()
	return c.value
}

// Peek returns the value without subscribing. It still recomputes a stale
// value.
func (c *Computed[T]) Peek() T {
	c.refresh()
	return c.value
}

// Dirty reports whether the next Get will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Stop detaches the computed from its inputs. The last value stays
// readable.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}

func (c *Computed[T]) refresh() {
	if !c.dirty {
		return
	}
	c.dirty = false
	ok := false
	defer func() {
		if !ok {
			c.dirty = true
		}
	}()
	c.effect.Run()
	ok = true
}

func (c *Computed[T]) getAny() any {
	return c.Get()
}
