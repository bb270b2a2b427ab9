package memhost

import "slices"

// NodeType classifies a host node.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

// String returns the node type's name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is a node of the in-memory tree.
type Node struct {
	id       int
	Type     NodeType
	Tag      string
	Text     string
	Attrs    map[string]any
	Parent   *Node
	Children []*Node
}

// ID returns the node's identifier, unique within its Host.
func (n *Node) ID() int {
	return n.id
}

// Index returns the node's position among its parent's children, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	return slices.Index(n.Parent.Children, n)
}

// TextContent returns the concatenated text of n's subtree.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.Text
	case CommentNode:
		return ""
	}
	var out []byte
	for _, c := range n.Children {
		out = append(out, c.TextContent()...)
	}
	return string(out)
}

// Elements returns the element children of n, skipping text and comments.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := slices.Index(p.Children, n); i >= 0 {
		p.Children = slices.Delete(p.Children, i, i+1)
	}
	n.Parent = nil
}

// insertBefore attaches n to p before anchor. An anchor that is not a
// child of p appends.
func (p *Node) insertBefore(n, anchor *Node) {
	n.detach()
	n.Parent = p
	i := -1
	if anchor != nil && anchor != n {
		i = slices.Index(p.Children, anchor)
	}
	if i < 0 {
		p.Children = append(p.Children, n)
		return
	}
	p.Children = slices.Insert(p.Children, i, n)
}
