package reactive

import (
	"math"
	"testing"
)

func TestComputedIsLazyAndCached(t *testing.T) {
	rt := NewRuntime()
	base := NewRef(rt, 2)
	calls := 0
	c := NewComputed(rt, func() int {
		calls++
		return base.Get() * 2
	})

	if calls != 0 {
		t.Fatalf("getter ran before first read: %d", calls)
	}
	if c.Get() != 4 || c.Get() != 4 {
		t.Fatal("unexpected computed value")
	}
	if calls != 1 {
		t.Errorf("two reads without mutation should compute once, got %d", calls)
	}

	base.Set(5)
	if calls != 1 {
		t.Errorf("invalidation should not recompute eagerly, got %d", calls)
	}
	if !c.Dirty() {
		t.Error("computed should be dirty after its input changed")
	}
	if c.Get() != 10 {
		t.Errorf("Get() = %d, want 10", c.Get())
	}
	if calls != 2 {
		t.Errorf("expected exactly one more computation, got %d total", calls)
	}
}

func TestComputedChainInvalidatesLazily(t *testing.T) {
	rt := NewRuntime()
	base := NewRef(rt, 1)
	midCalls, topCalls := 0, 0
	mid := NewComputed(rt, func() int {
		midCalls++
		return base.Get() + 1
	})
	top := NewComputed(rt, func() int {
		topCalls++
		return mid.Get() * 10
	})

	if top.Get() != 20 {
		t.Fatalf("top = %d, want 20", top.Peek())
	}
	base.Set(2)
	if midCalls != 1 || topCalls != 1 {
		t.Errorf("chain recomputed eagerly: mid=%d top=%d", midCalls, topCalls)
	}
	if top.Get() != 30 {
		t.Errorf("top = %d, want 30", top.Peek())
	}
	if midCalls != 2 || topCalls != 2 {
		t.Errorf("chain recompute counts: mid=%d top=%d, want 2 and 2", midCalls, topCalls)
	}
}

func TestComputedNotifiedBeforePlainEffects(t *testing.T) {
	rt := NewRuntime()
	base := NewRef(rt, 1)

	// The plain effect subscribes to base before the computed does, so
	// without computed-first ordering it would observe a stale value.
	type observation struct{ base, doubled int }
	var seen []observation
	var doubled *Computed[int]
	e := NewEffect(rt, func() {
		b := base.Get()
		if doubled == nil {
			return
		}
		seen = append(seen, observation{b, doubled.Get()})
	}, Lazy())
	e.Run()
	defer e.Stop()

	doubled = NewComputed(rt, func() int { return base.Get() * 2 })
	e.Run()
	seen = nil

	base.Set(2)
	base.Set(3)

	if len(seen) == 0 {
		t.Fatal("plain effect never observed the write")
	}
	for _, o := range seen {
		if o.doubled != o.base*2 {
			t.Errorf("plain effect observed stale computed: base=%d doubled=%d", o.base, o.doubled)
		}
	}
}

func TestComputedPanicLeavesDirty(t *testing.T) {
	rt := NewRuntime()
	fail := NewRef(rt, true)
	c := NewComputed(rt, func() int {
		if fail.Get() {
			panic("boom")
		}
		return 7
	})

	func() {
		defer func() { _ = recover() }()
		c.Get()
	}()
	if !c.Dirty() {
		t.Error("computed should stay dirty after its getter panicked")
	}
	if rt.ActiveEffect() != nil {
		t.Error("active slot leaked after panic")
	}

	fail.Set(false)
	if c.Get() != 7 {
		t.Errorf("Get() = %d, want 7", c.Peek())
	}
}

func TestComputedStop(t *testing.T) {
	rt := NewRuntime()
	base := NewRef(rt, 1)
	c := NewComputed(rt, func() int { return base.Get() })
	_ = c.Get()
	c.Stop()
	base.Set(9)
	if c.Get() != 1 {
		t.Errorf("stopped computed should keep its last value, got %d", c.Get())
	}
}

func TestRefIdentity(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		next    float64
		trigger bool
	}{
		{"same number", 1, 1, false},
		{"different number", 1, 2, true},
		{"NaN to NaN", math.NaN(), math.NaN(), false},
		{"positive to negative zero", 0, math.Copysign(0, -1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			r := NewRef(rt, tt.initial)
			runs := 0
			e := NewEffect(rt, func() {
				_ = r.Get()
				runs++
			})
			defer e.Stop()

			r.Set(tt.next)
			if got := runs == 2; got != tt.trigger {
				t.Errorf("triggered = %v, want %v", got, tt.trigger)
			}
		})
	}
}

func TestRefCustomEquals(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, []int{1, 2}).WithEquals(func(a, b []int) bool {
		return len(a) == len(b)
	})
	runs := 0
	e := NewEffect(rt, func() {
		_ = r.Get()
		runs++
	})
	defer e.Stop()

	r.Set([]int{3, 4})
	if runs != 1 {
		t.Errorf("custom equality ignored: runs = %d", runs)
	}
	r.Update(func(v []int) []int { return append(v, 5) })
	if runs != 2 {
		t.Errorf("Update with a changed value should trigger: runs = %d", runs)
	}
	if len(r.Peek()) != 3 {
		t.Errorf("Peek() = %v", r.Peek())
	}
}

func TestReactiveRefWrapsTarget(t *testing.T) {
	rt := NewRuntime()
	home := &address{City: "Oslo"}
	r := NewReactiveRef(rt, home)

	if r.Get() != Reactive(rt, home) {
		t.Fatal("ref does not hold the target's Object")
	}

	var cities []string
	e := NewEffect(rt, func() {
		if o := r.Get(); o != nil {
			cities = append(cities, Get[string](o, "City"))
		}
	})
	defer e.Stop()

	r.Get().Set("City", "Bergen")
	r.Set(home)
	r.Set(&address{City: "Tromsø"})
	r.Set(nil)

	want := []string{"Oslo", "Bergen", "Tromsø"}
	if len(cities) != len(want) {
		t.Fatalf("effect saw %v, want %v", cities, want)
	}
	for i := range want {
		if cities[i] != want[i] {
			t.Errorf("cities[%d] = %q, want %q", i, cities[i], want[i])
		}
	}
	if r.Raw() != nil || r.Peek() != nil {
		t.Errorf("Raw() = %v after Set(nil)", r.Raw())
	}
	if home.City != "Bergen" {
		t.Errorf("write through the Object did not reach the target: %q", home.City)
	}
}

func TestReactiveRefDeepWatch(t *testing.T) {
	rt := NewRuntime()
	r := NewReactiveRef(rt, &address{City: "Oslo"})
	fired := 0
	stop := WatchRef[*Object](rt, r, func(*Object, *Object) { fired++ }, Deep())
	defer stop()

	r.Get().Set("City", "Bergen")
	rt.Tick()
	if fired != 1 {
		t.Errorf("fired = %d after nested write, want 1", fired)
	}
}
