// Package wirehost is a vdom host that applies every operation to an
// in-memory mirror and records it for the wire.
//
// The server renders into a Host, calls Flush after each task and sends
// the resulting frame to its clients. A Replica rebuilds the mirror from
// those frames on the receiving side.
package wirehost

import (
	"reflect"

	"github.com/vango-dev/ripple/pkg/host/memhost"
	"github.com/vango-dev/ripple/pkg/protocol"
	"github.com/vango-dev/ripple/pkg/vdom"
)

// Host is a vdom.Host and vdom.Navigator that mirrors into a memhost and
// queues one protocol.Op per host call.
type Host struct {
	mirror  *memhost.Host
	pending []protocol.Op
	nextSeq uint64
}

var (
	_ vdom.Host      = (*Host)(nil)
	_ vdom.Navigator = (*Host)(nil)
)

// New creates a host over a fresh mirror.
func New() *Host {
	return &Host{mirror: memhost.New(), nextSeq: 1}
}

// Mirror returns the in-memory mirror.
func (h *Host) Mirror() *memhost.Host {
	return h.mirror
}

// Root returns the mirror's root container.
func (h *Host) Root() *memhost.Node {
	return h.mirror.Root()
}

// Pending returns the number of ops waiting for Flush.
func (h *Host) Pending() int {
	return len(h.pending)
}

// NextSeq returns the sequence number the next flushed frame will carry.
func (h *Host) NextSeq() uint64 {
	return h.nextSeq
}

// Flush returns the queued ops as a frame and clears the queue. It returns
// nil when nothing is queued; sequence numbers are only spent on non-empty
// frames.
func (h *Host) Flush() *protocol.OpsFrame {
	if len(h.pending) == 0 {
		return nil
	}
	f := &protocol.OpsFrame{Seq: h.nextSeq, Ops: h.pending}
	h.nextSeq++
	h.pending = nil
	return f
}

func (h *Host) push(op protocol.Op) {
	h.pending = append(h.pending, op)
}

func nodeID(n any) uint64 {
	if n == nil {
		return 0
	}
	return uint64(n.(*memhost.Node).ID())
}

// CreateElement implements vdom.Host.
func (h *Host) CreateElement(tag string) any {
	n := h.mirror.CreateElement(tag)
	h.push(protocol.Op{Code: protocol.OpCreateElement, Node: nodeID(n), Tag: tag})
	return n
}

// CreateText implements vdom.Host.
func (h *Host) CreateText(content string) any {
	n := h.mirror.CreateText(content)
	h.push(protocol.Op{Code: protocol.OpCreateText, Node: nodeID(n), Text: content})
	return n
}

// CreateComment implements vdom.Host.
func (h *Host) CreateComment(content string) any {
	n := h.mirror.CreateComment(content)
	h.push(protocol.Op{Code: protocol.OpCreateComment, Node: nodeID(n), Text: content})
	return n
}

// SetElementText implements vdom.Host.
func (h *Host) SetElementText(node any, text string) {
	h.mirror.SetElementText(node, text)
	h.push(protocol.Op{Code: protocol.OpSetElementText, Node: nodeID(node), Text: text})
}

// SetText implements vdom.Host.
func (h *Host) SetText(node any, text string) {
	h.mirror.SetText(node, text)
	h.push(protocol.Op{Code: protocol.OpSetText, Node: nodeID(node), Text: text})
}

// PatchProp implements vdom.Host. Function values cannot cross the wire;
// setting one is sent as a removal.
func (h *Host) PatchProp(node any, key string, prev, next any) {
	h.mirror.PatchProp(node, key, prev, next)
	if next == nil || isFunc(next) {
		h.push(protocol.Op{Code: protocol.OpRemoveProp, Node: nodeID(node), Key: key})
		return
	}
	h.push(protocol.Op{Code: protocol.OpSetProp, Node: nodeID(node), Key: key, Value: protocol.ValueOf(next)})
}

// Insert implements vdom.Host.
func (h *Host) Insert(node, parent, anchor any) {
	h.mirror.Insert(node, parent, anchor)
	h.push(protocol.Op{Code: protocol.OpInsert, Node: nodeID(node), Parent: nodeID(parent), Anchor: nodeID(anchor)})
}

// Remove implements vdom.Host.
func (h *Host) Remove(node any) {
	h.mirror.Remove(node)
	h.push(protocol.Op{Code: protocol.OpRemove, Node: nodeID(node)})
}

// ParentNode implements vdom.Navigator.
func (h *Host) ParentNode(node any) any {
	return h.mirror.ParentNode(node)
}

// NextSibling implements vdom.Navigator.
func (h *Host) NextSibling(node any) any {
	return h.mirror.NextSibling(node)
}

func isFunc(v any) bool {
	return reflect.TypeOf(v).Kind() == reflect.Func
}
