package remote

import (
	"fmt"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/protocol"
)

// Replayer applies op batches to a host adapter, keeping the ID table
// across batches. It is the client half of a stream and is not safe for
// concurrent use.
type Replayer struct {
	api   host.Adapter
	attrs host.Attributer
	nodes map[uint64]host.Node
	tree  links[uint64]
	seq   uint64
}

// NewReplayer creates a Replayer that mounts into root, the node standing
// for RootID.
func NewReplayer(api host.Adapter, root host.Node) *Replayer {
	r := &Replayer{
		api:   api,
		nodes: map[uint64]host.Node{RootID: root},
		tree:  newLinks[uint64](),
	}
	r.attrs, _ = api.(host.Attributer)
	return r
}

// Seq returns the sequence number of the last applied batch.
func (r *Replayer) Seq() uint64 {
	return r.seq
}

// Node returns the node with the given ID, or nil.
func (r *Replayer) Node(id uint64) host.Node {
	return r.nodes[id]
}

// Live returns the number of nodes in the ID table, the root included.
func (r *Replayer) Live() int {
	return len(r.nodes)
}

func (r *Replayer) forget(id uint64) {
	if id != RootID {
		delete(r.nodes, id)
	}
}

// Replay applies ops to api with a fresh ID table whose RootID is root.
func Replay(ops []protocol.Op, api host.Adapter, root host.Node) error {
	return NewReplayer(api, root).Apply(ops)
}

// ApplyFrame decodes a FrameOps frame and applies its batch.
func (r *Replayer) ApplyFrame(f *protocol.Frame) error {
	if f.Type != protocol.FrameOps {
		return errors.New("E060").Wrap(fmt.Errorf("%w: %s", protocol.ErrInvalidFrameType, f.Type))
	}
	batch, err := protocol.DecodeOps(f.Payload)
	if err != nil {
		return errors.New("E060").Wrap(err)
	}
	if err := r.Apply(batch.Ops); err != nil {
		return err
	}
	r.seq = batch.Seq
	return nil
}

// Apply applies ops in order. It stops at the first op naming an unknown
// node; ops before it stay applied.
func (r *Replayer) Apply(ops []protocol.Op) error {
	for i, op := range ops {
		if err := r.apply(op); err != nil {
			return errors.FromError(err, "E061").WithPath(fmt.Sprintf("op[%d]", i))
		}
	}
	return nil
}

func (r *Replayer) apply(op protocol.Op) error {
	switch op.Code {
	case protocol.OpCreateElement:
		if op.NS != "" {
			r.nodes[op.ID] = r.api.CreateElementNS(op.NS, op.Tag)
		} else {
			r.nodes[op.ID] = r.api.CreateElement(op.Tag)
		}
	case protocol.OpCreateText:
		r.nodes[op.ID] = r.api.CreateTextNode(op.Text)
	case protocol.OpCreateComment:
		r.nodes[op.ID] = r.api.CreateComment(op.Text)

	case protocol.OpInsertBefore:
		parent, node, err := r.pair(op)
		if err != nil {
			return err
		}
		var ref host.Node
		if op.Ref != 0 {
			if ref, err = r.lookup(op.Ref); err != nil {
				return err
			}
		}
		r.api.InsertBefore(parent, node, ref)
		r.tree.attach(op.Parent, op.ID)
	case protocol.OpAppendChild:
		parent, node, err := r.pair(op)
		if err != nil {
			return err
		}
		r.api.AppendChild(parent, node)
		r.tree.attach(op.Parent, op.ID)
	case protocol.OpRemoveChild:
		parent, node, err := r.pair(op)
		if err != nil {
			return err
		}
		r.api.RemoveChild(parent, node)
		if op.ID == RootID {
			r.tree.unlink(op.ID)
		} else {
			r.tree.release(op.ID, r.forget)
		}

	case protocol.OpSetText:
		n, err := r.lookup(op.ID)
		if err != nil {
			return err
		}
		r.api.SetTextContent(n, op.Text)
		r.tree.releaseChildren(op.ID, r.forget)
	case protocol.OpSetAttr, protocol.OpRemoveAttr:
		n, err := r.lookup(op.ID)
		if err != nil {
			return err
		}
		if r.attrs == nil {
			return nil
		}
		if op.Code == protocol.OpSetAttr {
			r.attrs.SetAttribute(n, op.Name, op.Value)
		} else {
			r.attrs.RemoveAttribute(n, op.Name)
		}

	default:
		return errors.New("E060").Wrap(fmt.Errorf("%w 0x%02x", protocol.ErrUnknownOp, uint8(op.Code)))
	}
	return nil
}

func (r *Replayer) pair(op protocol.Op) (parent, node host.Node, err error) {
	if parent, err = r.lookup(op.Parent); err != nil {
		return nil, nil, err
	}
	if node, err = r.lookup(op.ID); err != nil {
		return nil, nil, err
	}
	return parent, node, nil
}

func (r *Replayer) lookup(id uint64) (host.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, errors.New("E061").WithDetail(fmt.Sprintf("node %d was never created", id))
	}
	return n, nil
}
