package reactive

import (
	"context"
	"fmt"
)

// queueMicrotask appends fn to the microtask queue. Microtasks run after
// the current task completes and before the next one starts.
func (rt *Runtime) queueMicrotask(fn func()) {
	rt.microtasks = append(rt.microtasks, fn)
}

// Tick drains the microtask queue, including microtasks queued by the
// microtasks it runs. Synchronous callers use Tick as the end of a task.
func (rt *Runtime) Tick() {
	for len(rt.microtasks) > 0 {
		fn := rt.microtasks[0]
		rt.microtasks[0] = nil
		rt.microtasks = rt.microtasks[1:]
		fn()
	}
	rt.microtasks = nil
}

// Dispatch queues fn to run as a task on the goroutine executing Run.
// It is safe to call from any goroutine. It returns false when the queue
// is full and fn was discarded.
func (rt *Runtime) Dispatch(fn func()) bool {
	select {
	case rt.tasks <- fn:
		return true
	default:
		rt.logger.Warn("dispatch queue full, discarding task")
		return false
	}
}

// Run executes dispatched tasks one at a time until ctx is done, draining
// microtasks after each task. A panicking task is logged and does not stop
// the loop.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-rt.tasks:
			rt.runTask(fn)
		}
	}
}

func (rt *Runtime) runTask(fn func()) {
	defer rt.Tick()
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("task panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
