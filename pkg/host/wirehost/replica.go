package wirehost

import (
	"errors"
	"fmt"

	"github.com/vango-dev/ripple/pkg/host/memhost"
	"github.com/vango-dev/ripple/pkg/protocol"
)

// ErrSequenceGap is returned by Replica.Apply when a frame does not carry
// the next expected sequence number.
var ErrSequenceGap = errors.New("wirehost: sequence gap")

// Replica rebuilds a mirror from ops frames.
type Replica struct {
	host    *memhost.Host
	nodes   map[uint64]*memhost.Node
	nextSeq uint64
}

// NewReplica creates a replica whose root stands for the remote node
// rootID. nextSeq is the sequence number of the first frame it will apply.
func NewReplica(rootID, nextSeq uint64) *Replica {
	h := memhost.New()
	return &Replica{
		host:    h,
		nodes:   map[uint64]*memhost.Node{rootID: h.Root()},
		nextSeq: nextSeq,
	}
}

// NewReplicaFromInit creates a replica holding the tree an init message
// describes, ready for the frame numbered in.NextSeq.
func NewReplicaFromInit(in *protocol.Init) (*Replica, error) {
	r := NewReplica(in.RootID, in.NextSeq)
	for i := range in.Tree {
		if err := r.apply(&in.Tree[i]); err != nil {
			return nil, fmt.Errorf("init op %d (%s): %w", i, in.Tree[i].Code, err)
		}
	}
	return r, nil
}

// Host returns the replica's in-memory tree.
func (r *Replica) Host() *memhost.Host {
	return r.host
}

// HTML serializes the replica's root children.
func (r *Replica) HTML() string {
	return r.host.HTML()
}

// Apply applies one frame. Frames must arrive in sequence order.
func (r *Replica) Apply(f *protocol.OpsFrame) error {
	if f.Seq != r.nextSeq {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceGap, f.Seq, r.nextSeq)
	}
	for i := range f.Ops {
		if err := r.apply(&f.Ops[i]); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, f.Ops[i].Code, err)
		}
	}
	r.nextSeq++
	return nil
}

func (r *Replica) apply(op *protocol.Op) error {
	switch op.Code {
	case protocol.OpCreateElement:
		r.nodes[op.Node] = r.host.CreateElement(op.Tag).(*memhost.Node)
		return nil
	case protocol.OpCreateText:
		r.nodes[op.Node] = r.host.CreateText(op.Text).(*memhost.Node)
		return nil
	case protocol.OpCreateComment:
		r.nodes[op.Node] = r.host.CreateComment(op.Text).(*memhost.Node)
		return nil
	}

	n, err := r.lookup(op.Node)
	if err != nil {
		return err
	}

	switch op.Code {
	case protocol.OpSetElementText:
		r.host.SetElementText(n, op.Text)
	case protocol.OpSetText:
		r.host.SetText(n, op.Text)
	case protocol.OpSetProp:
		r.host.PatchProp(n, op.Key, nil, op.Value.Any())
	case protocol.OpRemoveProp:
		r.host.PatchProp(n, op.Key, nil, nil)
	case protocol.OpInsert:
		parent, err := r.lookup(op.Parent)
		if err != nil {
			return err
		}
		var anchor any
		if op.Anchor != 0 {
			a, err := r.lookup(op.Anchor)
			if err != nil {
				return err
			}
			anchor = a
		}
		r.host.Insert(n, parent, anchor)
	case protocol.OpRemove:
		r.host.Remove(n)
		delete(r.nodes, op.Node)
	default:
		return fmt.Errorf("unsupported op %s", op.Code)
	}
	return nil
}

func (r *Replica) lookup(id uint64) (*memhost.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %d", id)
	}
	return n, nil
}
