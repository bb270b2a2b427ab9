package vdom

import "slices"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText      Kind = iota // Text leaf
	KindComment               // Comment leaf, also the placeholder for failed renders
	KindElement               // <div>, <li>, etc.
	KindComponent             // Stateful component
	KindFragment              // Grouping without a wrapper, bounded by two anchors
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// ChildrenShape classifies what an element holds.
type ChildrenShape uint8

const (
	ChildrenNone  ChildrenShape = iota
	ChildrenText                // Text holds the element's only content
	ChildrenArray               // Children holds child nodes
)

// String returns the string representation of the ChildrenShape.
func (s ChildrenShape) String() string {
	switch s {
	case ChildrenNone:
		return "None"
	case ChildrenText:
		return "Text"
	case ChildrenArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// VNode describes one renderable unit for a single render pass. After the
// node is committed, El holds the host node the renderer created or reused
// for it.
type VNode struct {
	Kind     Kind          // Node type
	Tag      string        // Element tag name (e.g., "div")
	Key      string        // Reconciliation key, "" for unkeyed
	Props    Props         // Element properties or component props
	Shape    ChildrenShape // Children classification for elements and fragments
	Children []*VNode      // Child nodes when Shape is ChildrenArray
	Text     string        // Leaf content, or element text when Shape is ChildrenText
	Comp     *Component    // For KindComponent

	// El is the committed host node. For fragments it is the start anchor;
	// for components it is the root host node of the rendered subtree.
	El any
	// Anchor is the end anchor of a committed fragment.
	Anchor any
	// Instance is the live component state of a committed component node.
	Instance *ComponentInstance
}

// Props holds element properties or component props.
type Props map[string]any

// Attr represents a single property.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// SameType reports whether two nodes may be patched into one another:
// equal kind, tag, component definition and key.
func SameType(a, b *VNode) bool {
	return a.Kind == b.Kind && a.Tag == b.Tag && a.Comp == b.Comp && a.Key == b.Key
}

// clone returns an uncommitted shallow copy of v, used when an already
// committed node is mounted a second time.
func (v *VNode) clone() *VNode {
	c := *v
	c.Children = slices.Clone(v.Children)
	c.El = nil
	c.Anchor = nil
	c.Instance = nil
	return &c
}
