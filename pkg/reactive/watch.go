package reactive

import "reflect"

// StopFunc stops a watch.
type StopFunc func()

// WatchOption configures a watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	immediate bool
	deep      bool
}

// Immediate runs the callback once on creation, with the zero value as
// the old value.
func Immediate() WatchOption {
	return func(c *watchConfig) {
		c.immediate = true
	}
}

// Deep makes the watch read every nested key of the watched value, so a
// change anywhere inside it fires the callback. Deep watches fire on every
// trigger even when the top-level value is the same.
func Deep() WatchOption {
	return func(c *watchConfig) {
		c.deep = true
	}
}

// Watch calls cb with the new and old result of getter whenever the
// reactive values getter reads change. Callbacks are batched through the
// scheduler and fire only when the result changed by identity.
//
// Keep the returned StopFunc: the watch stays live only while it is
// reachable. Scope.OnCleanup(stop) ties it to a scope.
func Watch[T any](rt *Runtime, getter func() T, cb func(newVal, oldVal T), opts ...WatchOption) StopFunc {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	get := getter
	if cfg.deep {
		get = func() T {
			v := getter()
			traverse(v, make(map[any]struct{}))
			return v
		}
	}

	var (
		current T
		old     T
		e       *Effect
		force   = cfg.immediate
	)
	job := NewJob("watch", nil)
	job.Run = func() {
		if !e.Active() {
			return
		}
		e.Run()
		if force || cfg.deep || hasChanged(any(current), any(old)) {
			force = false
			prev := old
			old = current
			cb(current, prev)
		}
	}

	e = newEffect(rt, func() {
		current = get()
	}, RolePlain, func(*Effect) {
		rt.scheduler.Queue(job)
	})

	if cfg.immediate {
		job.Run()
	} else {
		e.Run()
		old = current
	}

	return func() {
		e.Stop()
	}
}

// WatchRef watches a Ref or Computed.
func WatchRef[T any](rt *Runtime, src Readable[T], cb func(newVal, oldVal T), opts ...WatchOption) StopFunc {
	return Watch(rt, src.Get, cb, opts...)
}

// WatchObject deeply watches obj and calls cb after any nested change.
func WatchObject(obj *Object, cb func(obj *Object), opts ...WatchOption) StopFunc {
	opts = append(opts, Deep())
	return Watch(obj.rt, func() *Object { return obj }, func(o, _ *Object) {
		cb(o)
	}, opts...)
}

// traverse reads every reachable reactive value under v so the running
// effect subscribes to all of them.
func traverse(v any, seen map[any]struct{}) {
	switch x := v.(type) {
	case nil:
		return
	case *Object:
		if _, ok := seen[x]; ok {
			return
		}
		seen[x] = struct{}{}
		for _, k := range x.Keys() {
			traverse(x.Get(k), seen)
		}
		return
	case anyReader:
		if _, ok := seen[x]; ok {
			return
		}
		seen[x] = struct{}{}
		traverse(x.getAny(), seen)
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if el := rv.Index(i); el.CanInterface() {
				traverse(el.Interface(), seen)
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			traverse(iter.Value().Interface(), seen)
		}
	}
}
