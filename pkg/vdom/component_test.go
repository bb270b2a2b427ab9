package vdom_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/host/memhost"
	"github.com/vango-dev/ripple/pkg/reactive"
	. "github.com/vango-dev/ripple/pkg/vdom"
)

func TestComponent_MountAndBatchedRerender(t *testing.T) {
	rt := reactive.NewRuntime()
	h := memhost.New()
	r := NewRenderer(h, WithRuntime(rt))

	label := reactive.NewRef(rt, "n")
	count := reactive.NewRef(rt, 0)
	counter := Define("Counter", func(ctx *SetupContext) RenderFunc {
		return func(Props) *VNode {
			return P(Textf("%s=%d", label.Get(), count.Get()))
		}
	})

	r.Render(C(counter), h.Root())
	inst := r.Root(h.Root()).Instance
	if got := h.HTML(); got != "<p>n=0</p>" {
		t.Fatalf("mount HTML = %s", got)
	}

	count.Set(1)
	label.Set("m")
	count.Set(2)
	if got := h.HTML(); got != "<p>n=0</p>" {
		t.Errorf("re-rendered before the flush: %s", got)
	}

	rt.Tick()

	if got := h.HTML(); got != "<p>m=2</p>" {
		t.Errorf("HTML after flush = %s, want <p>m=2</p>", got)
	}
	if got := inst.Renders(); got != 2 {
		t.Errorf("Renders() = %d, want 2", got)
	}
}

func TestComponent_PropsDriveSynchronousUpdate(t *testing.T) {
	r, h := newTestRenderer(t)
	greet := Define("Greet", func(*SetupContext) RenderFunc {
		return func(p Props) *VNode {
			return Span(Textf("hi %v", p["name"]))
		}
	})

	r.Render(Div(C(greet, Prop("name", "ann"))), h.Root())
	inst := r.Root(h.Root()).Children[0].Instance

	r.Render(Div(C(greet, Prop("name", "ann"))), h.Root())
	if got := inst.Renders(); got != 1 {
		t.Errorf("equal props re-rendered: Renders() = %d", got)
	}

	r.Render(Div(C(greet, Prop("name", "bo"))), h.Root())
	if got := h.HTML(); got != "<div><span>hi bo</span></div>" {
		t.Errorf("HTML = %s", got)
	}
	if got := inst.Renders(); got != 2 {
		t.Errorf("Renders() = %d, want 2", got)
	}
}

func TestComponent_ChildRerendersInPlace(t *testing.T) {
	rt := reactive.NewRuntime()
	h := memhost.New()
	r := NewRenderer(h, WithRuntime(rt))

	show := reactive.NewRef(rt, false)
	child := Define("Child", func(*SetupContext) RenderFunc {
		return func(Props) *VNode {
			if show.Get() {
				return Em("on")
			}
			return Small("off")
		}
	})
	parent := Define("Parent", func(*SetupContext) RenderFunc {
		return func(Props) *VNode {
			return Div(Span("a"), C(child), Span("b"))
		}
	})

	r.Render(C(parent), h.Root())
	show.Set(true)
	rt.Tick()

	want := "<div><span>a</span><em>on</em><span>b</span></div>"
	if got := h.HTML(); got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
	root := r.Root(h.Root())
	if root.El == nil || root.El != root.Instance.SubTree().El {
		t.Error("component node should carry its subtree's host node")
	}
}

func TestComponent_KeyedComponentsReorder(t *testing.T) {
	r, h := newTestRenderer(t)
	item := Define("Item", func(ctx *SetupContext) RenderFunc {
		return func(p Props) *VNode {
			return Li(p["label"].(string))
		}
	})
	render := func(labels ...string) {
		r.Render(Ul(Range(labels, func(l string, _ int) *VNode {
			return C(item, Key(l), Prop("label", l))
		})), h.Root())
	}

	render("a", "b", "c")
	first := r.Root(h.Root()).Children[0].Instance
	h.Reset()

	render("c", "a", "b")

	if got, want := h.HTML(), "<ul><li>c</li><li>a</li><li>b</li></ul>"; got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
	if got := h.Count(memhost.OpInsert); got != 1 {
		t.Errorf("inserts = %d, want 1", got)
	}
	if got := h.Count(memhost.OpCreateElement); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
	if r.Root(h.Root()).Children[1].Instance != first {
		t.Error("keyed component instance was not reused")
	}
}

func TestComponent_UnmountDisposesScope(t *testing.T) {
	rt := reactive.NewRuntime()
	h := memhost.New()
	r := NewRenderer(h, WithRuntime(rt))

	count := reactive.NewRef(rt, 0)
	var order []string
	comp := Define("Tracked", func(ctx *SetupContext) RenderFunc {
		ctx.OnUnmount(func() { order = append(order, "unmount") })
		ctx.Scope().Effect(func() {
			count.Get()
			order = append(order, "effect")
		})
		return func(Props) *VNode {
			return Text("v")
		}
	})

	r.Render(Div(C(comp)), h.Root())
	inst := r.Root(h.Root()).Children[0].Instance
	r.Render(Div(), h.Root())

	if inst.Mounted() {
		t.Error("instance still reports mounted")
	}
	count.Set(1)
	rt.Tick()

	if got := strings.Join(order, ","); got != "effect,unmount" {
		t.Errorf("order = %s, want effect,unmount", got)
	}
	if inst.Renders() != 1 {
		t.Errorf("unmounted component re-rendered: Renders() = %d", inst.Renders())
	}
}

func TestComponent_QueuedRenderSkippedAfterUnmount(t *testing.T) {
	rt := reactive.NewRuntime()
	h := memhost.New()
	r := NewRenderer(h, WithRuntime(rt))

	count := reactive.NewRef(rt, 0)
	comp := Define("Counter", func(*SetupContext) RenderFunc {
		return func(Props) *VNode { return Textf("%d", count.Get()) }
	})

	r.Render(C(comp), h.Root())
	inst := r.Root(h.Root()).Instance
	count.Set(1)
	r.Render(nil, h.Root())
	rt.Tick()

	if inst.Renders() != 1 {
		t.Errorf("Renders() = %d, want 1", inst.Renders())
	}
	if got := h.HTML(); got != "" {
		t.Errorf("HTML = %q, want empty", got)
	}
}

func TestComponent_RenderPanicKeepsPreviousTree(t *testing.T) {
	var buf bytes.Buffer
	rt := reactive.NewRuntime()
	h := memhost.New()
	r := NewRenderer(h, WithRuntime(rt), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	count := reactive.NewRef(rt, 0)
	comp := Define("Fragile", func(*SetupContext) RenderFunc {
		return func(Props) *VNode {
			n := count.Get()
			if n == 1 {
				panic("cannot render one")
			}
			return Span(Textf("%d", n))
		}
	})
	sibling := Define("Sibling", func(*SetupContext) RenderFunc {
		return func(Props) *VNode { return Em(Textf("s%d", count.Get())) }
	})

	r.Render(Div(C(comp), C(sibling)), h.Root())

	count.Set(1)
	rt.Tick()

	if got, want := h.HTML(), "<div><span>0</span><em>s1</em></div>"; got != want {
		t.Errorf("HTML after failed render = %s, want %s", got, want)
	}
	log := buf.String()
	for _, s := range []string{"component render panicked", "Fragile", errors.ErrRenderPanic} {
		if !strings.Contains(log, s) {
			t.Errorf("log missing %q: %s", s, log)
		}
	}

	count.Set(2)
	rt.Tick()
	if got, want := h.HTML(), "<div><span>2</span><em>s2</em></div>"; got != want {
		t.Errorf("HTML after recovery = %s, want %s", got, want)
	}
}

func TestComponent_MountPanicLeavesPlaceholder(t *testing.T) {
	r, h := newTestRenderer(t, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	broken := Define("Broken", func(*SetupContext) RenderFunc {
		return func(Props) *VNode { panic("nope") }
	})

	r.Render(Div(C(broken), P("after")), h.Root())

	if got, want := h.HTML(), "<div><!----><p>after</p></div>"; got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
}

func TestComponent_SetupPanicRendersNothing(t *testing.T) {
	r, h := newTestRenderer(t, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	broken := Define("BadSetup", func(*SetupContext) RenderFunc {
		panic("setup failed")
	})

	r.Render(Div(C(broken)), h.Root())

	if got, want := h.HTML(), "<div><!----></div>"; got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
}

// hostOnly hides memhost's Navigator so the renderer sees a bare Host.
type hostOnly struct{ Host }

func TestComponent_RootTypeChangeWithoutNavigator(t *testing.T) {
	tests := []struct {
		name  string
		mount func(flip *Component) *VNode
		move  func(flip *Component) *VNode
		want  string
	}{
		{
			name:  "before sibling",
			mount: func(flip *Component) *VNode { return Div(C(flip), P("after")) },
			want:  "<div><em>x</em><p>after</p></div>",
		},
		{
			name: "after keyed move",
			mount: func(flip *Component) *VNode {
				return Div(C(flip, Key("f")), P(Key("p"), "mid"), P(Key("q"), "end"))
			},
			move: func(flip *Component) *VNode {
				return Div(P(Key("p"), "mid"), C(flip, Key("f")), P(Key("q"), "end"))
			},
			want: "<div><p>mid</p><em>x</em><p>end</p></div>",
		},
		{
			name:  "inside fragment",
			mount: func(flip *Component) *VNode { return Div(Fragment(C(flip), P("in")), P("out")) },
			want:  "<div><em>x</em><p>in</p><p>out</p></div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := reactive.NewRuntime()
			mem := memhost.New()
			r := NewRenderer(hostOnly{mem}, WithRuntime(rt))

			em := reactive.NewRef(rt, false)
			flip := Define("Flip", func(*SetupContext) RenderFunc {
				return func(Props) *VNode {
					if em.Get() {
						return Em("x")
					}
					return Span("x")
				}
			})

			r.Render(tt.mount(flip), mem.Root())
			if tt.move != nil {
				r.Render(tt.move(flip), mem.Root())
			}
			em.Set(true)
			rt.Tick()

			if got := mem.HTML(); got != tt.want {
				t.Errorf("HTML = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComponent_FragmentRootTypeChangeWithoutNavigator(t *testing.T) {
	rt := reactive.NewRuntime()
	mem := memhost.New()
	r := NewRenderer(hostOnly{mem}, WithRuntime(rt))

	single := reactive.NewRef(rt, false)
	comp := Define("Pair", func(*SetupContext) RenderFunc {
		return func(Props) *VNode {
			if single.Get() {
				return Em("one")
			}
			return Fragment(Span("a"), Span("b"))
		}
	})

	r.Render(Div(C(comp), P("after")), mem.Root())
	single.Set(true)
	rt.Tick()

	if got, want := mem.HTML(), "<div><em>one</em><p>after</p></div>"; got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}

	r.Render(Div(Strong("s"), P("after")), mem.Root())
	if got, want := mem.HTML(), "<div><strong>s</strong><p>after</p></div>"; got != want {
		t.Errorf("HTML after element swap = %s, want %s", got, want)
	}
}
