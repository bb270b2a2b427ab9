package vdom

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/reactive"
)

// Component is a stateful component definition. Setup runs once per
// mounted instance and returns the function that renders it; reactive
// values read by that function schedule a re-render when they change.
type Component struct {
	Name  string
	Setup func(ctx *SetupContext) RenderFunc
}

// RenderFunc renders a component instance from its current props.
type RenderFunc func(props Props) *VNode

// Define creates a component definition.
func Define(name string, setup func(ctx *SetupContext) RenderFunc) *Component {
	return &Component{Name: name, Setup: setup}
}

// C creates a component node. Arguments can be: nil, Props, Attr, []Attr.
// A Key attribute keys the node; other attributes become props.
func C(comp *Component, args ...any) *VNode {
	node := &VNode{
		Kind: KindComponent,
		Comp: comp,
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case Props:
			for k, val := range v {
				node.setAttr(Attr{Key: k, Value: val})
			}
		}
	}
	return node
}

// SetupContext is passed to Component.Setup.
type SetupContext struct {
	inst *ComponentInstance
}

// Runtime returns the runtime the component's effects run on.
func (c *SetupContext) Runtime() *reactive.Runtime {
	return c.inst.r.rt
}

// Scope returns the component's scope. Effects and watches created
// through it are stopped when the component unmounts.
func (c *SetupContext) Scope() *reactive.Scope {
	return c.inst.scope
}

// Props returns the props the component was mounted with.
func (c *SetupContext) Props() Props {
	return c.inst.props
}

// Logger returns the renderer's logger.
func (c *SetupContext) Logger() *slog.Logger {
	return c.inst.r.logger
}

// OnUnmount registers fn to run when the component unmounts.
func (c *SetupContext) OnUnmount(fn func()) {
	c.inst.scope.OnCleanup(fn)
}

// ComponentInstance is the live state of a mounted component.
type ComponentInstance struct {
	def    *Component
	r      *Renderer
	parent *ComponentInstance

	// vnode is the node currently representing the instance in its
	// parent's tree.
	vnode *VNode
	props Props

	render  RenderFunc
	subTree *VNode
	effect  *reactive.Effect
	job     *reactive.Job
	scope   *reactive.Scope

	// container and anchor are where the instance was mounted.
	container any
	anchor    any

	mounted   bool
	unmounted bool
	// queued is set while the render job waits in the scheduler.
	queued  bool
	renders int
}

// Name returns the component definition's name.
func (inst *ComponentInstance) Name() string {
	return inst.def.Name
}

// Mounted reports whether the instance has committed its first render and
// has not been unmounted.
func (inst *ComponentInstance) Mounted() bool {
	return inst.mounted && !inst.unmounted
}

// SubTree returns the committed render output.
func (inst *ComponentInstance) SubTree() *VNode {
	return inst.subTree
}

// Renders returns how many times the render function has been invoked.
func (inst *ComponentInstance) Renders() int {
	return inst.renders
}

// Props returns the instance's current props.
func (inst *ComponentInstance) Props() Props {
	return inst.props
}

func (r *Renderer) processComponent(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		r.mountComponent(n2, container, anchor)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(n *VNode, container, anchor any) {
	inst := &ComponentInstance{
		def:       n.Comp,
		r:         r,
		parent:    r.current,
		vnode:     n,
		props:     n.Props,
		container: container,
		anchor:    anchor,
	}
	n.Instance = inst

	var parentScope *reactive.Scope
	if inst.parent != nil {
		parentScope = inst.parent.scope
	}
	inst.scope = reactive.NewScope(r.rt, parentScope)

	r.rt.Untracked(func() {
		inst.render = inst.setup()
	})

	inst.job = reactive.NewJob(inst.def.Name, func() {
		if !inst.queued || inst.unmounted {
			return
		}
		inst.queued = false
		inst.effect.Run()
	})
	inst.effect = inst.scope.Effect(inst.update,
		reactive.Lazy(),
		reactive.EffectName(inst.def.Name),
		reactive.WithScheduler(func(*reactive.Effect) {
			inst.queued = true
			r.rt.Scheduler().Queue(inst.job)
		}),
	)
	inst.effect.Run()
}

// updateComponent reuses the instance of n1 for n2 and re-renders it
// synchronously when its props changed.
func (r *Renderer) updateComponent(n1, n2 *VNode) {
	inst := n1.Instance
	n2.Instance = inst
	n2.El = n1.El
	inst.vnode = n2

	if !propsChanged(n1.Props, n2.Props) {
		return
	}
	inst.props = n2.Props
	inst.queued = false
	inst.effect.Run()
}

func propsChanged(prev, next Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for k, nv := range next {
		pv, ok := prev[k]
		if !ok || !reactive.SameValue(pv, nv) {
			return true
		}
	}
	return false
}

func (inst *ComponentInstance) setup() (render RenderFunc) {
	r := inst.r
	defer func() {
		if rec := recover(); rec != nil {
			inst.fail("component setup panicked", rec)
			render = nil
		}
	}()

	prev := r.current
	r.current = inst
	defer func() { r.current = prev }()

	if inst.def.Setup == nil {
		return nil
	}
	return inst.def.Setup(&SetupContext{inst: inst})
}

// update is the body of the render effect: render, then mount or patch
// the result.
func (inst *ComponentInstance) update() {
	r := inst.r
	prev := r.current
	r.current = inst
	defer func() { r.current = prev }()

	tree, ok := inst.renderRoot()

	if !inst.mounted {
		if !ok || tree == nil {
			tree = Comment("")
		}
		tree = fresh(tree)
		r.patch(nil, tree, inst.container, inst.anchor)
		inst.subTree = tree
		inst.mounted = true
		inst.setHostEl(tree.El)
		return
	}

	if !ok {
		// Keep the previous committed tree.
		return
	}
	if tree == nil {
		tree = Comment("")
	}
	prevTree := inst.subTree
	if tree != prevTree {
		tree = fresh(tree)
	}

	container := inst.container
	if r.nav != nil && prevTree.El != nil {
		if p := r.nav.ParentNode(prevTree.El); p != nil {
			container = p
		}
	}
	r.patch(prevTree, tree, container, r.nextHostNode(prevTree, inst.anchor))
	inst.subTree = tree
	inst.setHostEl(tree.El)
}

// renderRoot invokes the render function. A panic is logged and reported
// as ok == false.
func (inst *ComponentInstance) renderRoot() (tree *VNode, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			inst.fail("component render panicked", rec)
			tree, ok = nil, false
		}
	}()

	if inst.render == nil {
		return nil, true
	}
	inst.renders++
	return inst.render(inst.props), true
}

func (inst *ComponentInstance) fail(msg string, rec any) {
	err := errors.New(errors.ErrRenderPanic).WithDetail(fmt.Sprint(rec))
	inst.r.logger.Error(msg,
		"component", inst.def.Name,
		"error", err,
	)
	inst.r.metrics.RenderFailed()
}

// setHostEl records el as the instance's host node, and as the host node
// of every ancestor whose root is this instance.
func (inst *ComponentInstance) setHostEl(el any) {
	for c := inst; c != nil; c = c.parent {
		c.vnode.El = el
		if c.parent == nil || c.parent.subTree != c.vnode {
			return
		}
	}
}

func (inst *ComponentInstance) teardown() {
	if inst.unmounted {
		return
	}
	inst.unmounted = true
	inst.queued = false
	inst.scope.Dispose()
}
