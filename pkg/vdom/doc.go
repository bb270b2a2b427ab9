// Package vdom provides the tree node model and the reconciler for ripple.
//
// A render pass produces a tree of VNodes. The Renderer compares it with
// the tree committed by the previous pass and issues the smallest set of
// Host operations that turns one into the other. Host is the only way the
// renderer touches the outside world, so the same reconciler drives the
// in-memory host, the wire host and any other adapter.
//
// # Core Types
//
// VNode is a tagged node: text, comment, element, component or fragment.
// Elements classify their content by ChildrenShape (none, text or array).
// Props holds element properties; Attr builds them.
//
// # Element API
//
// Elements are created with H or the named factories:
//
//	Ul(Class("todos"),
//	    Range(items, func(it Item, _ int) *VNode {
//	        return Li(Key(it.ID), it.Title)
//	    }),
//	)
//
// # Reconciliation
//
// Children lists are diffed by key. The common prefix and suffix are
// patched in place, and in the remaining middle section only the nodes
// outside the longest increasing run of old positions are moved.
//
// # Components
//
// A Component's Setup runs once; the RenderFunc it returns runs inside a
// reactive effect whose re-runs are batched by the runtime's scheduler.
// A render that panics is logged and leaves the previous output in place.
package vdom
