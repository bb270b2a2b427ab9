package wirehost

import (
	"slices"

	"github.com/vango-dev/ripple/pkg/host/memhost"
	"github.com/vango-dev/ripple/pkg/protocol"
)

// Tree returns ops that rebuild the mirror's current root children with
// their node IDs. Nodes are created and populated before being inserted,
// parents after their children. Function-valued attributes are skipped.
func (h *Host) Tree() []protocol.Op {
	var ops []protocol.Op
	root := h.mirror.Root()
	for _, c := range root.Children {
		ops = appendTree(ops, c)
		ops = append(ops, protocol.Op{Code: protocol.OpInsert, Node: uint64(c.ID()), Parent: uint64(root.ID())})
	}
	return ops
}

func appendTree(ops []protocol.Op, n *memhost.Node) []protocol.Op {
	id := uint64(n.ID())
	switch n.Type {
	case memhost.TextNode:
		return append(ops, protocol.Op{Code: protocol.OpCreateText, Node: id, Text: n.Text})
	case memhost.CommentNode:
		return append(ops, protocol.Op{Code: protocol.OpCreateComment, Node: id, Text: n.Text})
	}

	ops = append(ops, protocol.Op{Code: protocol.OpCreateElement, Node: id, Tag: n.Tag})

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := n.Attrs[k]
		if v == nil || isFunc(v) {
			continue
		}
		ops = append(ops, protocol.Op{Code: protocol.OpSetProp, Node: id, Key: k, Value: protocol.ValueOf(v)})
	}

	for _, c := range n.Children {
		ops = appendTree(ops, c)
		ops = append(ops, protocol.Op{Code: protocol.OpInsert, Node: uint64(c.ID()), Parent: id})
	}
	return ops
}

// Init builds the init message for a newly connected client.
func (h *Host) Init(clientID string) *protocol.Init {
	return &protocol.Init{
		Version:  protocol.CurrentVersion,
		ClientID: clientID,
		NextSeq:  h.nextSeq,
		RootID:   uint64(h.mirror.Root().ID()),
		HTML:     h.mirror.HTML(),
		Tree:     h.Tree(),
	}
}
