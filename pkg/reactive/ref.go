package reactive

// Readable is a tracked value source. Ref and Computed implement it.
type Readable[T any] interface {
	// Get returns the current value and subscribes the active effect.
	Get() T
	// Peek returns the current value without subscribing.
	Peek() T
}

// anyReader lets deep traversal read Ref and Computed values without
// knowing their type parameter.
type anyReader interface {
	getAny() any
}

// Ref is a single reactive cell. Writes notify subscribers only when the
// new value differs from the stored one by identity.
type Ref[T any] struct {
	rt    *Runtime
	dep   dep
	value T

	// equal overrides identity comparison when set.
	equal func(a, b T) bool
}

// NewRef creates a ref holding initial.
func NewRef[T any](rt *Runtime, initial T) *Ref[T] {
	return &Ref[T]{rt: rt, value: initial}
}

// WithEquals replaces the identity comparison used by Set and returns r.
func (r *Ref[T]) WithEquals(eq func(a, b T) bool) *Ref[T] {
	r.equal = eq
	return r
}

// Get returns the value and subscribes the active effect.
func (r *Ref[T]) Get() T {
	r.rt.trackDep(&r.dep)
	return r.value
}

// Peek returns the value without subscribing.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores v and notifies subscribers if it changed.
func (r *Ref[T]) Set(v T) {
	if r.same(r.value, v) {
		return
	}
	r.value = v
	r.rt.triggerDep(&r.dep)
}

// Update sets the value to fn applied to the current value.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

// Trigger notifies subscribers without changing the value, for callers
// that mutated the value in place.
func (r *Ref[T]) Trigger() {
	r.rt.triggerDep(&r.dep)
}

func (r *Ref[T]) same(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return sameValue(any(a), any(b))
}

func (r *Ref[T]) getAny() any {
	return r.Get()
}

// ObjectRef is a ref to a struct or map pointer. The stored value is the
// target's Object, so reads through the value are tracked as well as
// replacing the value itself.
type ObjectRef[T any] struct {
	ref *Ref[*Object]
}

// NewReactiveRef creates a ref holding the Object for target. A nil
// target stores nil.
func NewReactiveRef[T any](rt *Runtime, target *T) *ObjectRef[T] {
	return &ObjectRef[T]{ref: NewRef(rt, toObject(rt, target))}
}

func toObject[T any](rt *Runtime, target *T) *Object {
	if target == nil {
		return nil
	}
	return Reactive(rt, target)
}

// Get returns the Object and subscribes the active effect to the ref.
func (r *ObjectRef[T]) Get() *Object {
	return r.ref.Get()
}

// Peek returns the Object without subscribing.
func (r *ObjectRef[T]) Peek() *Object {
	return r.ref.Peek()
}

// Set replaces the target. Setting the current target again is a no-op.
func (r *ObjectRef[T]) Set(target *T) {
	r.ref.Set(toObject(r.ref.rt, target))
}

// Raw returns the target pointer, or nil.
func (r *ObjectRef[T]) Raw() *T {
	o := r.ref.Peek()
	if o == nil {
		return nil
	}
	return o.Raw().(*T)
}

func (r *ObjectRef[T]) getAny() any {
	return r.ref.Get()
}
