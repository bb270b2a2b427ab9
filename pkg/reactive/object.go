package reactive

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"weak"

	"github.com/vango-dev/ripple/internal/errors"
)

// iterateKey is the pseudo-field tracked by Keys. Adding or deleting a map
// entry triggers it.
const iterateKey = "\x00iterate"

// Object is the reactive accessor for a target: a pointer to a struct or
// to a map with string keys. Reads through Get subscribe the active effect
// to that field; writes through Set notify the field's subscribers.
//
// Struct targets expose their exported fields by name.
type Object struct {
	rt     *Runtime
	key    any
	target any
	val    reflect.Value
	isMap  bool

	// fields maps exported field names to indexes, structs only.
	fields map[string]int
	names  []string
}

// Reactive returns the Object for target, creating it on first use.
// Calling Reactive again with the same pointer returns the same Object
// while that Object is reachable.
//
// Reactive panics with a coded error when target is nil or does not point
// to a struct or a string-keyed map.
func Reactive[T any](rt *Runtime, target *T) *Object {
	if target == nil {
		panic(errors.New(errors.ErrInvalidTarget).WithDetail("nil pointer"))
	}
	key := weak.Make(target)

	rt.store.purge()
	wp, cached := rt.store.objects[key]
	if cached {
		if o := wp.Value(); o != nil {
			return o
		}
	}

	val := reflect.ValueOf(target).Elem()
	o := &Object{rt: rt, key: key, target: target, val: val}
	switch val.Kind() {
	case reflect.Struct:
		o.fields = make(map[string]int)
		t := val.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			o.fields[f.Name] = i
			o.names = append(o.names, f.Name)
		}
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			panic(errors.New(errors.ErrInvalidTarget).WithDetail(fmt.Sprintf("map key type %s is not string", val.Type().Key())))
		}
		if val.IsNil() {
			val.Set(reflect.MakeMap(val.Type()))
		}
		o.isMap = true
	default:
		panic(errors.New(errors.ErrInvalidTarget).WithDetail(fmt.Sprintf("%T", target)))
	}

	if !cached {
		runtime.AddCleanup(target, rt.store.markStale, any(key))
	}
	rt.store.objects[key] = weak.Make(o)
	return o
}

// Runtime returns the runtime the object belongs to.
func (o *Object) Runtime() *Runtime {
	return o.rt
}

// Raw returns the wrapped target pointer. Access through it is untracked.
func (o *Object) Raw() any {
	return o.target
}

// Get returns the value of key and subscribes the active effect to it.
// A missing map key reads as nil. Get panics on an unknown struct field.
func (o *Object) Get(key string) any {
	o.rt.track(o.key, key)
	v, _ := o.read(key)
	return v
}

// Has reports whether key exists and subscribes the active effect to it.
func (o *Object) Has(key string) bool {
	o.rt.track(o.key, key)
	if o.isMap {
		return o.val.MapIndex(o.mapKey(key)).IsValid()
	}
	_, ok := o.fields[key]
	return ok
}

// Keys returns the field names of a struct target in declaration order or
// the sorted keys of a map target. For maps it subscribes the active
// effect to key additions and deletions.
func (o *Object) Keys() []string {
	if !o.isMap {
		return slices.Clone(o.names)
	}
	o.rt.track(o.key, iterateKey)
	keys := make([]string, 0, o.val.Len())
	iter := o.val.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if !o.isMap {
		return len(o.names)
	}
	o.rt.track(o.key, iterateKey)
	return o.val.Len()
}

// Set stores value under key and notifies subscribers of key when the
// value changed by identity. Set panics when value is not assignable to
// the field or map element type.
func (o *Object) Set(key string, value any) {
	old, existed := o.read(key)

	if o.isMap {
		rv := o.coerce(key, value, o.val.Type().Elem())
		if existed && sameValue(old, value) {
			return
		}
		o.val.SetMapIndex(o.mapKey(key), rv)
		o.rt.trigger(o.key, key)
		if !existed {
			o.rt.trigger(o.key, iterateKey)
		}
		return
	}

	f := o.field(key)
	rv := o.coerce(key, value, f.Type())
	if sameValue(old, value) {
		return
	}
	f.Set(rv)
	o.rt.trigger(o.key, key)
}

// Delete removes key from a map target, or resets a struct field to its
// zero value, and notifies subscribers.
func (o *Object) Delete(key string) {
	if o.isMap {
		if !o.val.MapIndex(o.mapKey(key)).IsValid() {
			return
		}
		o.val.SetMapIndex(o.mapKey(key), reflect.Value{})
		o.rt.trigger(o.key, key)
		o.rt.trigger(o.key, iterateKey)
		return
	}

	f := o.field(key)
	if f.IsZero() {
		return
	}
	f.SetZero()
	o.rt.trigger(o.key, key)
}

// read returns the current value of key without tracking.
func (o *Object) read(key string) (any, bool) {
	if o.isMap {
		v := o.val.MapIndex(o.mapKey(key))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
	return o.field(key).Interface(), true
}

func (o *Object) field(key string) reflect.Value {
	i, ok := o.fields[key]
	if !ok {
		panic(errors.New(errors.ErrUnknownField).WithDetail(fmt.Sprintf("%s has no exported field %q", o.val.Type(), key)))
	}
	return o.val.Field(i)
}

func (o *Object) mapKey(key string) reflect.Value {
	return reflect.ValueOf(key).Convert(o.val.Type().Key())
}

func (o *Object) coerce(key string, value any, t reflect.Type) reflect.Value {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t)
		}
	} else if rv := reflect.ValueOf(value); rv.Type().AssignableTo(t) {
		return rv
	}
	panic(errors.New(errors.ErrValueType).WithDetail(fmt.Sprintf("%q: cannot assign %T to %s", key, value, t)))
}

// Get returns the value of key converted to V, or the zero V when the key
// is missing or holds nil.
func Get[V any](o *Object, key string) V {
	v, _ := o.Get(key).(V)
	return v
}
