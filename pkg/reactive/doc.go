// Package reactive provides fine-grained dependency tracking and batched
// re-execution for ripple.
//
// Reads of reactive state performed while an Effect is running subscribe
// that effect to the state that was read. Writes notify every subscribed
// effect. Effects with a scheduler hook defer their work to the Scheduler,
// which coalesces everything queued during one synchronous task into a
// single flush.
//
// # Core Types
//
// Runtime is the execution context. It holds the dependency store, the
// active-effect slot, the scheduler and the microtask queue. Every reactive
// value belongs to exactly one Runtime:
//
//	rt := reactive.NewRuntime()
//
// Object wraps a pointer to a struct or to a string-keyed map and exposes
// tracked accessors:
//
//	state := reactive.Reactive(rt, &Todo{Title: "write docs"})
//	title := state.Get("Title")  // Read (subscribes the active effect)
//	state.Set("Done", true)      // Write (notifies subscribers)
//
// Ref[T] is a single reactive cell, Computed[T] a lazily recomputed cached
// derivation:
//
//	count := reactive.NewRef(rt, 1)
//	doubled := reactive.NewComputed(rt, func() int { return count.Get() * 2 })
//
// Effect re-runs when anything it read changes:
//
//	e := reactive.NewEffect(rt, func() {
//	    fmt.Println("count is", count.Get())
//	})
//	defer e.Stop()
//
// # Batching
//
// Effects created with WithScheduler, Watch callbacks and component renders
// queue a Job instead of running synchronously. The scheduler flushes the
// queue once per microtask checkpoint, so any number of writes made in one
// task produce one run per job:
//
//	a.Set(1)
//	b.Set(2)
//	rt.Tick() // one flush
//
// # Ownership
//
// The dependency store holds targets and effects weakly. An effect stays
// subscribed only while something else references it: keep the *Effect or
// StopFunc returned to you, or attach it to a Scope.
//
// # Threading
//
// A Runtime is single-threaded. Run drives it from one goroutine and
// Dispatch is the only method that may be called from other goroutines.
package reactive
