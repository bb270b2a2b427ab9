package reactive

import (
	"runtime"
	"testing"
	"time"
)

//go:noinline
func trackThrowaway(rt *Runtime) {
	state := Reactive(rt, &counterState{})
	e := NewEffect(rt, func() { _ = state.Get("X") })
	_ = e
}

func TestStorePurgesReclaimedTargets(t *testing.T) {
	rt := NewRuntime()
	trackThrowaway(rt)

	for i := 0; i < 100 && rt.store.targetCount() > 0; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	if n := rt.store.targetCount(); n != 0 {
		t.Errorf("dependency store still holds %d reclaimed targets", n)
	}
	if len(rt.store.objects) != 0 {
		t.Errorf("object cache still holds %d entries", len(rt.store.objects))
	}
}

//go:noinline
func subscribeThrowaway(rt *Runtime, r *Ref[int], runs *int) {
	NewEffect(rt, func() {
		_ = r.Get()
		*runs++
	})
}

func TestUnreferencedEffectIsReclaimed(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 0)
	runs := 0
	subscribeThrowaway(rt, r, &runs)

	for i := 0; i < 10; i++ {
		runtime.GC()
	}
	r.Set(1)

	if runs != 1 {
		t.Errorf("reclaimed effect still ran: runs = %d", runs)
	}
	if r.dep.size() != 0 {
		t.Errorf("dead subscriber was not compacted: %d entries", r.dep.size())
	}
}

func TestDepSetIsOrderedAndDeduplicated(t *testing.T) {
	rt := NewRuntime()
	a := newEffect(rt, func() {}, RolePlain, nil)
	b := newEffect(rt, func() {}, RolePlain, nil)

	var d dep
	if !d.add(a) || !d.add(b) {
		t.Fatal("first adds should report true")
	}
	if d.add(a) {
		t.Error("re-adding an effect should be a no-op")
	}

	got := d.snapshot()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("snapshot = %v, want [a b]", got)
	}

	d.remove(a)
	got = d.snapshot()
	if len(got) != 1 || got[0] != b {
		t.Errorf("snapshot after remove = %v, want [b]", got)
	}
}

func TestSameValue(t *testing.T) {
	m := map[string]int{}
	s := []int{1}
	f := func() {}
	type point struct{ X, Y int }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil int", nil, 0, false},
		{"equal ints", 3, 3, true},
		{"int vs int64", 3, int64(3), false},
		{"equal strings", "a", "a", true},
		{"equal structs", point{1, 2}, point{1, 2}, true},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{}, false},
		{"same slice", s, s, true},
		{"equal slice contents", s, []int{1}, false},
		{"funcs", f, f, false},
		{"float32 NaN", float32(0) / zero32(), float32(0) / zero32(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func zero32() float32 { return 0 }

// subscribeThroughScope creates an effect and a watch owned by s and
// drops every other reference to them.
func subscribeThroughScope(s *Scope, r *Ref[int], runs, watched *int) {
	s.Effect(func() {
		_ = r.Get()
		*runs++
	})
	s.Watch(func() any { return r.Get() }, func(any, any) { *watched++ })
}

func TestScopeKeepsEffectsAliveAcrossGC(t *testing.T) {
	rt := NewRuntime()
	s := NewScope(rt, nil)
	r := NewRef(rt, 0)
	runs, watched := 0, 0
	subscribeThroughScope(s, r, &runs, &watched)

	for i := range 3 {
		for range 10 {
			runtime.GC()
		}
		r.Set(i + 1)
		rt.Tick()
	}

	if runs != 4 {
		t.Errorf("scope-owned effect runs = %d, want 4", runs)
	}
	if watched != 3 {
		t.Errorf("scope-owned watch fired %d times, want 3", watched)
	}

	s.Dispose()
	r.Set(10)
	rt.Tick()
	if runs != 4 || watched != 3 {
		t.Errorf("disposed scope still notified: runs=%d watched=%d", runs, watched)
	}
}
