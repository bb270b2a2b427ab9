package vdom

// Host performs the physical mutations the renderer decides on. Host nodes
// are opaque to the renderer; containers passed to Render must be
// comparable (typically pointers).
type Host interface {
	// CreateElement returns a fresh, detached element node.
	CreateElement(tag string) any
	// CreateText returns a fresh, detached text node.
	CreateText(content string) any
	// CreateComment returns a fresh, detached comment node.
	CreateComment(content string) any
	// SetElementText replaces all children of node with a single text run.
	SetElementText(node any, text string)
	// SetText updates a text node's content.
	SetText(node any, text string)
	// PatchProp applies one property transition. A nil next removes it.
	PatchProp(node any, key string, prev, next any)
	// Insert places node into parent before anchor, or appends when anchor
	// is nil. Inserting an attached node moves it.
	Insert(node, parent, anchor any)
	// Remove detaches node from its parent.
	Remove(node any)
}

// Navigator is implemented by hosts that can answer structural queries.
// With it the renderer keeps a replaced node in place and re-renders a
// component in its current parent; without it the renderer falls back to
// the container and anchor the component was mounted with.
type Navigator interface {
	ParentNode(node any) any
	NextSibling(node any) any
}
