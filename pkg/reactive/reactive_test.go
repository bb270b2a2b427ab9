package reactive

import (
	"testing"

	"github.com/vango-dev/ripple/internal/errors"
)

type counterState struct {
	X     int
	Y     int
	Z     int
	Label string
	Tags  []string
	inner int
}

func TestEffectRunsOnCreate(t *testing.T) {
	rt := NewRuntime()
	ran := 0
	e := NewEffect(rt, func() { ran++ })
	defer e.Stop()

	if ran != 1 {
		t.Errorf("expected 1 run on create, got %d", ran)
	}
}

func TestLazyEffectDoesNotRun(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	ran := 0
	e := NewEffect(rt, func() {
		_ = state.Get("X")
		ran++
	}, Lazy())
	defer e.Stop()

	state.Set("X", 1)
	if ran != 0 {
		t.Fatalf("lazy effect ran %d times before Run", ran)
	}

	e.Run()
	state.Set("X", 2)
	if ran != 2 {
		t.Errorf("expected 2 runs after explicit Run and one write, got %d", ran)
	}
}

func TestTrackingSubscribesActiveEffect(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})

	var seen []int
	e := NewEffect(rt, func() {
		seen = append(seen, Get[int](state, "X"))
	})
	defer e.Stop()

	state.Set("X", 1)
	state.Set("Y", 5) // not read, no rerun
	state.Set("X", 2)

	want := []int{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestReadOutsideEffectDoesNotTrack(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	_ = state.Get("X")

	if rt.store.targetCount() != 0 {
		t.Errorf("untracked read created %d dependency maps", rt.store.targetCount())
	}
}

func TestWritesCoalesceIntoOneRunPerFlush(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})

	runs := 0
	var e *Effect
	job := NewJob("render", func() { e.Run() })
	e = NewEffect(rt, func() {
		_ = state.Get("X")
		runs++
	}, WithScheduler(func(*Effect) { rt.Scheduler().Queue(job) }))
	defer e.Stop()

	for i := 1; i <= 5; i++ {
		state.Set("X", i)
	}
	if runs != 1 {
		t.Fatalf("effect re-ran before flush: runs = %d", runs)
	}

	rt.Tick()
	if runs != 2 {
		t.Errorf("expected exactly one re-run per flush, got %d total runs", runs)
	}
	if rt.Scheduler().Pending() {
		t.Error("scheduler should be idle after flush")
	}
}

func TestThreeFieldsOneRender(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})

	renders := 0
	var e *Effect
	job := NewJob("render", func() { e.Run() })
	e = NewEffect(rt, func() {
		_ = state.Get("X")
		_ = state.Get("Y")
		_ = state.Get("Z")
		renders++
	}, WithScheduler(func(*Effect) { rt.Scheduler().Queue(job) }))
	defer e.Stop()

	state.Set("X", 1)
	state.Set("Y", 2)
	state.Set("Z", 3)
	rt.Tick()

	if renders != 2 {
		t.Errorf("expected 1 initial + 1 batched render, got %d", renders)
	}
}

func TestSameValueWriteDoesNotTrigger(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{Label: "a"})
	runs := 0
	e := NewEffect(rt, func() {
		_ = state.Get("Label")
		runs++
	})
	defer e.Stop()

	state.Set("Label", "a")
	if runs != 1 {
		t.Errorf("identical write re-ran effect: runs = %d", runs)
	}
}

func TestStoppedEffectIsNotNotified(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	runs := 0
	e := NewEffect(rt, func() {
		_ = state.Get("X")
		runs++
	})

	e.Stop()
	state.Set("X", 1)

	if runs != 1 {
		t.Errorf("stopped effect re-ran: runs = %d", runs)
	}
	if e.Active() {
		t.Error("Active() should be false after Stop")
	}
}

func TestEffectDropsStaleDependencies(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	useX := NewRef(rt, true)

	runs := 0
	e := NewEffect(rt, func() {
		runs++
		if useX.Get() {
			_ = state.Get("X")
		} else {
			_ = state.Get("Y")
		}
	})
	defer e.Stop()

	useX.Set(false)
	runs = 0
	state.Set("X", 10)
	if runs != 0 {
		t.Errorf("write to dropped dependency re-ran effect %d times", runs)
	}
	state.Set("Y", 10)
	if runs != 1 {
		t.Errorf("write to new dependency should re-run once, got %d", runs)
	}
}

func TestNestedEffectsRestoreActiveSlot(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})

	outerRuns, innerRuns := 0, 0
	var inner *Effect
	outer := NewEffect(rt, func() {
		outerRuns++
		if inner == nil {
			inner = NewEffect(rt, func() {
				innerRuns++
				_ = state.Get("Y")
			})
		}
		_ = state.Get("X")
		if rt.ActiveEffect() == nil {
			t.Error("active slot was not restored after nested run")
		}
	})
	defer outer.Stop()
	defer inner.Stop()

	if rt.ActiveEffect() != nil {
		t.Error("active slot should be empty outside effects")
	}

	state.Set("Y", 1)
	if outerRuns != 1 || innerRuns != 2 {
		t.Errorf("after Y write: outer=%d inner=%d, want 1 and 2", outerRuns, innerRuns)
	}
	state.Set("X", 1)
	if outerRuns != 2 || innerRuns != 2 {
		t.Errorf("after X write: outer=%d inner=%d, want 2 and 2", outerRuns, innerRuns)
	}
}

func TestSelfWriteDoesNotRecurse(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	runs := 0
	e := NewEffect(rt, func() {
		runs++
		state.Set("X", Get[int](state, "X")+1)
	})
	defer e.Stop()

	if runs != 1 {
		t.Errorf("effect re-triggered itself: runs = %d", runs)
	}
	if got := state.Raw().(*counterState).X; got != 1 {
		t.Errorf("X = %d, want 1", got)
	}
}

func TestUntrackedRead(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{})
	runs := 0
	e := NewEffect(rt, func() {
		runs++
		rt.Untracked(func() { _ = state.Get("X") })
	})
	defer e.Stop()

	state.Set("X", 3)
	if runs != 1 {
		t.Errorf("untracked read subscribed the effect: runs = %d", runs)
	}
}

func TestReactiveReturnsSameObject(t *testing.T) {
	rt := NewRuntime()
	target := &counterState{}
	a := Reactive(rt, target)
	b := Reactive(rt, target)
	if a != b {
		t.Error("Reactive should return the cached Object for the same target")
	}
}

func TestMapTarget(t *testing.T) {
	rt := NewRuntime()
	var m map[string]int
	obj := Reactive(rt, &m)

	var keys []string
	e := NewEffect(rt, func() {
		keys = obj.Keys()
	})
	defer e.Stop()

	obj.Set("b", 2)
	obj.Set("a", 1)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
	if m["a"] != 1 {
		t.Error("writes should land in the underlying map")
	}

	obj.Delete("a")
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys after delete = %v", keys)
	}
	if obj.Get("missing") != nil {
		t.Error("missing key should read as nil")
	}
	if obj.Has("a") {
		t.Error("deleted key should be absent")
	}
}

func TestStructDeleteResetsField(t *testing.T) {
	rt := NewRuntime()
	state := Reactive(rt, &counterState{X: 4})
	var x int
	e := NewEffect(rt, func() { x = Get[int](state, "X") })
	defer e.Stop()

	state.Delete("X")
	if x != 0 {
		t.Errorf("X = %d after Delete, want 0", x)
	}
}

func TestReactiveMisusePanics(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		code string
		fn   func()
	}{
		{
			name: "nil target",
			code: errors.ErrInvalidTarget,
			fn:   func() { Reactive[counterState](rt, nil) },
		},
		{
			name: "non-struct target",
			code: errors.ErrInvalidTarget,
			fn: func() {
				n := 3
				Reactive(rt, &n)
			},
		},
		{
			name: "int-keyed map",
			code: errors.ErrInvalidTarget,
			fn: func() {
				m := map[int]string{}
				Reactive(rt, &m)
			},
		},
		{
			name: "unknown field",
			code: errors.ErrUnknownField,
			fn:   func() { Reactive(rt, &counterState{}).Get("Nope") },
		},
		{
			name: "unexported field",
			code: errors.ErrUnknownField,
			fn:   func() { Reactive(rt, &counterState{}).Get("inner") },
		},
		{
			name: "wrong value type",
			code: errors.ErrValueType,
			fn:   func() { Reactive(rt, &counterState{}).Set("X", "nope") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("expected error panic, got %v", r)
				}
				if !errors.HasCode(err, tt.code) {
					t.Errorf("panic %v does not carry code %s", err, tt.code)
				}
			}()
			tt.fn()
		})
	}
}

func TestSliceFieldComparesByReference(t *testing.T) {
	rt := NewRuntime()
	tags := []string{"a"}
	state := Reactive(rt, &counterState{Tags: tags})
	runs := 0
	e := NewEffect(rt, func() {
		_ = state.Get("Tags")
		runs++
	})
	defer e.Stop()

	state.Set("Tags", tags)
	if runs != 1 {
		t.Errorf("same slice re-ran effect: runs = %d", runs)
	}
	state.Set("Tags", []string{"a"})
	if runs != 2 {
		t.Errorf("new slice with equal contents should trigger: runs = %d", runs)
	}
}
