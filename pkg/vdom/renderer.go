package vdom

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/reactive"
)

const tracerName = "github.com/vango-dev/ripple/pkg/vdom"

// Renderer reconciles VNode trees against a Host. It remembers the tree
// committed into each container so the next Render call patches instead of
// remounting.
//
// A Renderer shares the single-threaded discipline of its reactive.Runtime.
type Renderer struct {
	host Host
	nav  Navigator
	rt   *reactive.Runtime

	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	strictKeys bool

	// roots maps containers to their committed trees.
	roots map[any]*VNode

	// current is the component whose render is being committed.
	current *ComponentInstance
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRuntime sets the runtime component effects run on.
func WithRuntime(rt *reactive.Runtime) RendererOption {
	return func(r *Renderer) {
		r.rt = rt
	}
}

// WithLogger sets the logger for render failures and key diagnostics.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the collectors for host operations and renders.
func WithMetrics(m *metrics.Metrics) RendererOption {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracer overrides the tracer used for render spans.
func WithTracer(tracer trace.Tracer) RendererOption {
	return func(r *Renderer) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithStrictKeys makes a duplicate key in one sibling list panic instead
// of logging a warning.
func WithStrictKeys(strict bool) RendererOption {
	return func(r *Renderer) {
		r.strictKeys = strict
	}
}

// NewRenderer creates a renderer over host.
func NewRenderer(host Host, opts ...RendererOption) *Renderer {
	r := &Renderer{
		host:   host,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		roots:  make(map[any]*VNode),
	}
	r.nav, _ = host.(Navigator)
	for _, opt := range opts {
		opt(r)
	}
	if r.rt == nil {
		r.rt = reactive.NewRuntime(reactive.WithLogger(r.logger), reactive.WithMetrics(r.metrics))
	}
	return r
}

// Runtime returns the runtime component effects run on.
func (r *Renderer) Runtime() *reactive.Runtime {
	return r.rt
}

// Render commits vnode into container, patching against whatever was
// committed there before. A nil vnode unmounts the container's tree.
func (r *Renderer) Render(vnode *VNode, container any) {
	if container == nil {
		panic(errors.New(errors.ErrNilContainer))
	}

	_, span := r.tracer.Start(context.Background(), "vdom.render")
	defer span.End()

	prev := r.roots[container]
	switch {
	case vnode == nil:
		if prev != nil {
			r.unmount(prev, true)
			delete(r.roots, container)
		}
	default:
		if vnode != prev {
			vnode = fresh(vnode)
		}
		r.patch(prev, vnode, container, nil)
		r.roots[container] = vnode
	}
	span.SetAttributes(attribute.Bool("ripple.mount", prev == nil))
	r.metrics.Rendered()
}

// Root returns the tree committed into container, or nil.
func (r *Renderer) Root(container any) *VNode {
	return r.roots[container]
}

// patch reconciles n1 into n2 at the given position. A nil n1 mounts n2.
func (r *Renderer) patch(n1, n2 *VNode, container, anchor any) {
	if n1 == n2 {
		return
	}

	if n1 != nil && !SameType(n1, n2) {
		if r.nav == nil {
			// Without navigation the old tree is the only record of where
			// n2 belongs: mount in front of it, then drop it.
			r.patch(nil, n2, container, firstHostNode(n1))
			r.unmount(n1, true)
			return
		}
		anchor = r.nextHostNode(n1, anchor)
		r.unmount(n1, true)
		n1 = nil
	}

	switch n2.Kind {
	case KindText:
		r.processText(n1, n2, container, anchor)
	case KindComment:
		r.processComment(n1, n2, container, anchor)
	case KindFragment:
		r.processFragment(n1, n2, container, anchor)
	case KindElement:
		r.processElement(n1, n2, container, anchor)
	case KindComponent:
		r.processComponent(n1, n2, container, anchor)
	}
}

func (r *Renderer) processText(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		n2.El = r.createText(n2.Text)
		r.insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.setText(n2.El, n2.Text)
	}
}

func (r *Renderer) processComment(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		n2.El = r.createComment(n2.Text)
		r.insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
}

func (r *Renderer) processFragment(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		n2.El = r.createText("")
		n2.Anchor = r.createText("")
		r.insert(n2.El, container, anchor)
		r.insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor)
		return
	}
	n2.El = n1.El
	n2.Anchor = n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor)
}

func (r *Renderer) processElement(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		r.mountElement(n2, container, anchor)
		return
	}
	r.patchElement(n1, n2)
}

func (r *Renderer) mountElement(n *VNode, container, anchor any) {
	el := r.createElement(n.Tag)
	n.El = el

	switch n.Shape {
	case ChildrenText:
		r.setElementText(el, n.Text)
	case ChildrenArray:
		r.mountChildren(n.Children, el, nil)
	}

	for _, key := range sortedKeys(n.Props) {
		r.patchProp(el, key, nil, n.Props[key])
	}

	r.insert(el, container, anchor)
}

func (r *Renderer) patchElement(n1, n2 *VNode) {
	el := n1.El
	n2.El = el
	r.patchChildren(n1, n2, el, nil)
	r.patchProps(el, n1.Props, n2.Props)
}

// patchProps applies changed and added properties first, then removes
// properties absent from next.
func (r *Renderer) patchProps(el any, prev, next Props) {
	for _, key := range sortedKeys(next) {
		nv := next[key]
		pv, had := prev[key]
		if !had || !reactive.SameValue(pv, nv) {
			r.patchProp(el, key, pv, nv)
		}
	}
	for _, key := range sortedKeys(prev) {
		if _, keep := next[key]; !keep {
			r.patchProp(el, key, prev[key], nil)
		}
	}
}

func (r *Renderer) mountChildren(children []*VNode, container, anchor any) {
	for i, child := range children {
		child = fresh(child)
		children[i] = child
		r.patch(nil, child, container, anchor)
	}
}

// fresh returns n, or an uncommitted copy when n is already committed
// somewhere in a live tree.
func fresh(n *VNode) *VNode {
	if n.El != nil || n.Instance != nil {
		return n.clone()
	}
	return n
}

// firstHostNode returns the first host node of a committed n, or nil.
func firstHostNode(n *VNode) any {
	if n.Kind == KindComponent {
		if n.Instance == nil || n.Instance.subTree == nil {
			return nil
		}
		return firstHostNode(n.Instance.subTree)
	}
	return n.El
}

// nextHostNode returns the host node following n's last host node, or
// fallback when the host cannot navigate.
func (r *Renderer) nextHostNode(n *VNode, fallback any) any {
	if r.nav == nil {
		return fallback
	}
	switch n.Kind {
	case KindComponent:
		if n.Instance != nil && n.Instance.subTree != nil {
			return r.nextHostNode(n.Instance.subTree, fallback)
		}
	case KindFragment:
		return r.nav.NextSibling(n.Anchor)
	}
	if n.El == nil {
		return fallback
	}
	return r.nav.NextSibling(n.El)
}

func sortedKeys(p Props) []string {
	if len(p) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(p))
}
