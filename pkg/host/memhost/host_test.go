package memhost

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsertAppendsAndMoves(t *testing.T) {
	h := New()
	root := h.Root()
	a := h.CreateElement("li").(*Node)
	b := h.CreateElement("li").(*Node)
	c := h.CreateElement("li").(*Node)

	h.Insert(a, root, nil)
	h.Insert(b, root, nil)
	h.Insert(c, root, b)

	got := []int{root.Children[0].ID(), root.Children[1].ID(), root.Children[2].ID()}
	want := []int{a.ID(), c.ID(), b.ID()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}

	// Inserting an attached node moves it.
	h.Insert(a, root, nil)
	if len(root.Children) != 3 {
		t.Fatalf("len(children) = %d, want 3", len(root.Children))
	}
	if root.Children[2] != a {
		t.Errorf("last child = %d, want %d", root.Children[2].ID(), a.ID())
	}
}

func TestInsertForeignAnchorAppends(t *testing.T) {
	h := New()
	root := h.Root()
	other := h.CreateElement("div").(*Node)
	stray := h.CreateText("x").(*Node)
	h.Insert(stray, other, nil)

	n := h.CreateElement("p").(*Node)
	h.Insert(n, root, stray)

	if n.Parent != root || n.Index() != 0 {
		t.Errorf("node not appended to root: parent=%v index=%d", n.Parent, n.Index())
	}
}

func TestOpLog(t *testing.T) {
	h := New()
	el := h.CreateElement("p").(*Node)
	h.PatchProp(el, "class", nil, "note")
	h.SetElementText(el, "hi")
	h.Insert(el, h.Root(), nil)
	h.PatchProp(el, "class", "note", nil)
	h.Remove(el)

	want := []Op{
		{Kind: OpCreateElement, Node: el.ID(), Tag: "p"},
		{Kind: OpPatchProp, Node: el.ID(), Key: "class", Value: "note"},
		{Kind: OpSetElementText, Node: el.ID(), Value: "hi"},
		{Kind: OpInsert, Node: el.ID(), Parent: h.Root().ID()},
		{Kind: OpPatchProp, Node: el.ID(), Key: "class"},
		{Kind: OpRemove, Node: el.ID()},
	}
	if diff := cmp.Diff(want, h.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := h.Count(OpPatchProp); got != 2 {
		t.Errorf("Count(patch_prop) = %d, want 2", got)
	}

	h.Reset()
	if len(h.Ops()) != 0 {
		t.Errorf("Reset left %d ops", len(h.Ops()))
	}
}

func TestNavigator(t *testing.T) {
	h := New()
	root := h.Root()
	a := h.CreateText("a")
	b := h.CreateText("b")
	h.Insert(a, root, nil)
	h.Insert(b, root, nil)

	if got := h.ParentNode(a); got != root {
		t.Errorf("ParentNode(a) = %v, want root", got)
	}
	if got := h.NextSibling(a); got != b {
		t.Errorf("NextSibling(a) = %v, want b", got)
	}
	if got := h.NextSibling(b); got != nil {
		t.Errorf("NextSibling(b) = %v, want nil", got)
	}
	detached := h.CreateText("c")
	if got := h.ParentNode(detached); got != nil {
		t.Errorf("ParentNode(detached) = %v, want nil", got)
	}
}

func TestSetElementTextReplacesChildren(t *testing.T) {
	h := New()
	el := h.CreateElement("div").(*Node)
	child := h.CreateElement("span").(*Node)
	h.Insert(child, el, nil)

	h.SetElementText(el, "text")
	if got := el.TextContent(); got != "text" {
		t.Errorf("TextContent = %q, want %q", got, "text")
	}
	if child.Parent != nil {
		t.Error("old child still attached")
	}
	if _, ok := h.Node(child.ID()); ok {
		t.Error("old child still indexed")
	}

	h.SetElementText(el, "")
	if len(el.Children) != 0 {
		t.Errorf("len(children) = %d, want 0", len(el.Children))
	}
}

func TestHTML(t *testing.T) {
	tests := []struct {
		name  string
		build func(h *Host) *Node
		want  string
	}{
		{
			name: "text is escaped",
			build: func(h *Host) *Node {
				return h.CreateText(`<a & "b">`).(*Node)
			},
			want: "&lt;a &amp; &quot;b&quot;&gt;",
		},
		{
			name: "attributes sorted and escaped",
			build: func(h *Host) *Node {
				el := h.CreateElement("a").(*Node)
				h.PatchProp(el, "title", nil, "x\ny")
				h.PatchProp(el, "href", nil, "/?a=1&b=2")
				return el
			},
			want: `<a href="/?a=1&amp;b=2" title="x&#10;y"></a>`,
		},
		{
			name: "boolean attributes",
			build: func(h *Host) *Node {
				el := h.CreateElement("input").(*Node)
				h.PatchProp(el, "disabled", nil, true)
				h.PatchProp(el, "checked", nil, false)
				return el
			},
			want: `<input disabled>`,
		},
		{
			name: "function props omitted",
			build: func(h *Host) *Node {
				el := h.CreateElement("button").(*Node)
				h.PatchProp(el, "onclick", nil, func() {})
				h.SetElementText(el, "go")
				return el
			},
			want: `<button>go</button>`,
		},
		{
			name: "comment",
			build: func(h *Host) *Node {
				return h.CreateComment("a--b").(*Node)
			},
			want: "<!--a- -b-->",
		},
		{
			name: "nested",
			build: func(h *Host) *Node {
				ul := h.CreateElement("ul").(*Node)
				li := h.CreateElement("li").(*Node)
				h.SetElementText(li, "one")
				h.Insert(li, ul, nil)
				h.Insert(h.CreateElement("br"), ul, nil)
				return ul
			},
			want: "<ul><li>one</li><br></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTML(tt.build(New()))
			if got != tt.want {
				t.Errorf("HTML = %q, want %q", got, tt.want)
			}
		})
	}
}
