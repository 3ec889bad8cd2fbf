package remote

import (
	"sync"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/host/memhost"
	"github.com/vango-dev/vpatch/pkg/protocol"
)

// RootID is the ID of the mount root on both ends of a stream.
const RootID uint64 = 1

// Recorder is a host.Adapter and host.Attributer that forwards every call
// to an inner adapter and records mutations as ops. Queries are answered
// by the inner adapter and are not recorded.
//
// Recorder is safe for concurrent use, so delayed removals may complete
// from timer goroutines while a session is idle; their ops are shipped
// with the next batch.
type Recorder struct {
	mu    sync.Mutex
	inner host.Adapter
	attrs host.Attributer
	root  host.Node
	ids   map[host.Node]uint64
	tree  links[host.Node]
	next  uint64
	ops   []protocol.Op
}

// NewRecorder records mutations of the tree under root, an existing node
// of inner. If inner has no attribute support, attribute writes are
// still recorded and reads report no attribute.
func NewRecorder(inner host.Adapter, root host.Node) *Recorder {
	r := &Recorder{
		inner: inner,
		root:  root,
		ids:   map[host.Node]uint64{root: RootID},
		tree:  newLinks[host.Node](),
		next:  RootID + 1,
	}
	r.attrs, _ = inner.(host.Attributer)
	return r
}

// NewMemRecorder records into a fresh in-memory tree rooted at an element
// with the given tag.
func NewMemRecorder(rootTag string) *Recorder {
	a := memhost.New()
	return NewRecorder(a, a.NewRoot(rootTag))
}

// Root returns the mount root.
func (r *Recorder) Root() host.Node {
	return r.root
}

// Inner returns the wrapped adapter.
func (r *Recorder) Inner() host.Adapter {
	return r.inner
}

// ID returns the ID of n, or 0 if n was not created through r.
func (r *Recorder) ID(n host.Node) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[n]
}

// Flush returns the ops recorded since the last Flush.
func (r *Recorder) Flush() []protocol.Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.ops
	r.ops = nil
	return ops
}

// Pending returns the number of unflushed ops.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// assign must be called with mu held.
func (r *Recorder) assign(n host.Node) uint64 {
	id := r.next
	r.next++
	r.ids[n] = id
	return id
}

// idOf must be called with mu held. Nil maps to 0.
func (r *Recorder) idOf(n host.Node) uint64 {
	if n == nil {
		return 0
	}
	return r.ids[n]
}

// Live returns the number of nodes holding an ID, the root included.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// forget must be called with mu held.
func (r *Recorder) forget(n host.Node) {
	if n != r.root {
		delete(r.ids, n)
	}
}

func (r *Recorder) record(op protocol.Op) {
	r.ops = append(r.ops, op)
}

// CreateElement implements host.Adapter.
func (r *Recorder) CreateElement(tag string) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.inner.CreateElement(tag)
	r.record(protocol.Op{Code: protocol.OpCreateElement, ID: r.assign(n), Tag: tag})
	return n
}

// CreateElementNS implements host.Adapter.
func (r *Recorder) CreateElementNS(ns, tag string) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.inner.CreateElementNS(ns, tag)
	r.record(protocol.Op{Code: protocol.OpCreateElement, ID: r.assign(n), NS: ns, Tag: tag})
	return n
}

// CreateTextNode implements host.Adapter.
func (r *Recorder) CreateTextNode(text string) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.inner.CreateTextNode(text)
	r.record(protocol.Op{Code: protocol.OpCreateText, ID: r.assign(n), Text: text})
	return n
}

// CreateComment implements host.Adapter.
func (r *Recorder) CreateComment(text string) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.inner.CreateComment(text)
	r.record(protocol.Op{Code: protocol.OpCreateComment, ID: r.assign(n), Text: text})
	return n
}

// InsertBefore implements host.Adapter.
func (r *Recorder) InsertBefore(parent, node, ref host.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inner.InsertBefore(parent, node, ref)
	r.record(protocol.Op{
		Code:   protocol.OpInsertBefore,
		Parent: r.idOf(parent),
		ID:     r.idOf(node),
		Ref:    r.idOf(ref),
	})
	r.tree.attach(parent, node)
}

// RemoveChild implements host.Adapter. The IDs of child and of every node
// below it are released.
func (r *Recorder) RemoveChild(parent, child host.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inner.RemoveChild(parent, child)
	r.record(protocol.Op{Code: protocol.OpRemoveChild, Parent: r.idOf(parent), ID: r.idOf(child)})
	if child == r.root {
		r.tree.unlink(child)
		return
	}
	r.tree.release(child, r.forget)
}

// AppendChild implements host.Adapter.
func (r *Recorder) AppendChild(parent, child host.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inner.AppendChild(parent, child)
	r.record(protocol.Op{Code: protocol.OpAppendChild, Parent: r.idOf(parent), ID: r.idOf(child)})
	r.tree.attach(parent, child)
}

// ParentNode implements host.Adapter.
func (r *Recorder) ParentNode(n host.Node) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.ParentNode(n)
}

// NextSibling implements host.Adapter.
func (r *Recorder) NextSibling(n host.Node) host.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.NextSibling(n)
}

// TagName implements host.Adapter.
func (r *Recorder) TagName(n host.Node) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.TagName(n)
}

// SetTextContent implements host.Adapter. On an element it replaces the
// children, so their IDs are released.
func (r *Recorder) SetTextContent(n host.Node, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inner.SetTextContent(n, text)
	r.record(protocol.Op{Code: protocol.OpSetText, ID: r.idOf(n), Text: text})
	r.tree.releaseChildren(n, r.forget)
}

// GetAttribute implements host.Attributer.
func (r *Recorder) GetAttribute(n host.Node, name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attrs == nil {
		return "", false
	}
	return r.attrs.GetAttribute(n, name)
}

// SetAttribute implements host.Attributer.
func (r *Recorder) SetAttribute(n host.Node, name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attrs != nil {
		r.attrs.SetAttribute(n, name, value)
	}
	r.record(protocol.Op{Code: protocol.OpSetAttr, ID: r.idOf(n), Name: name, Value: value})
}

// RemoveAttribute implements host.Attributer.
func (r *Recorder) RemoveAttribute(n host.Node, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attrs != nil {
		r.attrs.RemoveAttribute(n, name)
	}
	r.record(protocol.Op{Code: protocol.OpRemoveAttr, ID: r.idOf(n), Name: name})
}

var (
	_ host.Adapter    = (*Recorder)(nil)
	_ host.Attributer = (*Recorder)(nil)
)
