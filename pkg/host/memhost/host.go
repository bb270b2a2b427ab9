// Package memhost is an in-memory host for the vdom renderer.
//
// Host keeps a plain node tree and an op log of every call the renderer
// makes, which makes it the host of choice for tests and for mirroring a
// remote tree on the server. It is not safe for concurrent use; drive it
// from the goroutine that owns the renderer's runtime.
package memhost

import (
	"fmt"

	"github.com/vango-dev/ripple/pkg/vdom"
)

// OpKind names a host operation. The names match the renderer's host op
// metric labels.
type OpKind string

const (
	OpCreateElement  OpKind = "create_element"
	OpCreateText     OpKind = "create_text"
	OpCreateComment  OpKind = "create_comment"
	OpSetElementText OpKind = "set_element_text"
	OpSetText        OpKind = "set_text"
	OpPatchProp      OpKind = "patch_prop"
	OpInsert         OpKind = "insert"
	OpRemove         OpKind = "remove"
)

// Op is one logged host call. Node, Parent and Anchor hold node IDs; 0
// means none.
type Op struct {
	Kind   OpKind
	Node   int
	Parent int
	Anchor int
	// Tag is set for OpCreateElement.
	Tag string
	// Key is the property name for OpPatchProp.
	Key string
	// Value is the text for create, set and element-text ops, and the
	// next property value for OpPatchProp.
	Value any
}

// Host is an in-memory vdom.Host and vdom.Navigator.
type Host struct {
	root   *Node
	nextID int
	ops    []Op
	nodes  map[int]*Node
}

var (
	_ vdom.Host      = (*Host)(nil)
	_ vdom.Navigator = (*Host)(nil)
)

// New creates a host with an empty root container.
func New() *Host {
	h := &Host{nodes: make(map[int]*Node)}
	h.root = h.newNode(ElementNode)
	h.root.Tag = "root"
	return h
}

// Root returns the root container.
func (h *Host) Root() *Node {
	return h.root
}

// Node returns the live node with the given ID.
func (h *Host) Node(id int) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Ops returns the op log since the last Reset.
func (h *Host) Ops() []Op {
	return h.ops
}

// Count returns how many ops of kind were logged since the last Reset.
func (h *Host) Count(kind OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears the op log.
func (h *Host) Reset() {
	h.ops = nil
}

// HTML serializes the root container's children.
func (h *Host) HTML() string {
	return InnerHTML(h.root)
}

func (h *Host) newNode(t NodeType) *Node {
	h.nextID++
	n := &Node{id: h.nextID, Type: t}
	h.nodes[n.id] = n
	return n
}

func (h *Host) log(op Op) {
	h.ops = append(h.ops, op)
}

// CreateElement implements vdom.Host.
func (h *Host) CreateElement(tag string) any {
	n := h.newNode(ElementNode)
	n.Tag = tag
	h.log(Op{Kind: OpCreateElement, Node: n.id, Tag: tag})
	return n
}

// CreateText implements vdom.Host.
func (h *Host) CreateText(content string) any {
	n := h.newNode(TextNode)
	n.Text = content
	h.log(Op{Kind: OpCreateText, Node: n.id, Value: content})
	return n
}

// CreateComment implements vdom.Host.
func (h *Host) CreateComment(content string) any {
	n := h.newNode(CommentNode)
	n.Text = content
	h.log(Op{Kind: OpCreateComment, Node: n.id, Value: content})
	return n
}

// SetElementText implements vdom.Host.
func (h *Host) SetElementText(node any, text string) {
	n := mustNode(node)
	for _, c := range n.Children {
		c.Parent = nil
		h.release(c)
	}
	n.Children = nil
	if text != "" {
		t := h.newNode(TextNode)
		t.Text = text
		t.Parent = n
		n.Children = []*Node{t}
	}
	h.log(Op{Kind: OpSetElementText, Node: n.id, Value: text})
}

// SetText implements vdom.Host.
func (h *Host) SetText(node any, text string) {
	n := mustNode(node)
	n.Text = text
	h.log(Op{Kind: OpSetText, Node: n.id, Value: text})
}

// PatchProp implements vdom.Host.
func (h *Host) PatchProp(node any, key string, prev, next any) {
	n := mustNode(node)
	if next == nil {
		delete(n.Attrs, key)
	} else {
		if n.Attrs == nil {
			n.Attrs = make(map[string]any)
		}
		n.Attrs[key] = next
	}
	h.log(Op{Kind: OpPatchProp, Node: n.id, Key: key, Value: next})
}

// Insert implements vdom.Host.
func (h *Host) Insert(node, parent, anchor any) {
	n := mustNode(node)
	p := mustNode(parent)
	var a *Node
	if anchor != nil {
		a = mustNode(anchor)
	}
	p.insertBefore(n, a)
	h.log(Op{Kind: OpInsert, Node: n.id, Parent: p.id, Anchor: idOf(a)})
}

// Remove implements vdom.Host.
func (h *Host) Remove(node any) {
	n := mustNode(node)
	n.detach()
	h.release(n)
	h.log(Op{Kind: OpRemove, Node: n.id})
}

// ParentNode implements vdom.Navigator.
func (h *Host) ParentNode(node any) any {
	n := mustNode(node)
	if n.Parent == nil {
		return nil
	}
	return n.Parent
}

// NextSibling implements vdom.Navigator.
func (h *Host) NextSibling(node any) any {
	n := mustNode(node)
	if n.Parent == nil {
		return nil
	}
	i := n.Index()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// release forgets n's subtree in the ID index.
func (h *Host) release(n *Node) {
	delete(h.nodes, n.id)
	for _, c := range n.Children {
		h.release(c)
	}
}

func mustNode(v any) *Node {
	n, ok := v.(*Node)
	if !ok || n == nil {
		panic(fmt.Sprintf("memhost: not a node: %T", v))
	}
	return n
}

func idOf(n *Node) int {
	if n == nil {
		return 0
	}
	return n.id
}
