package reconcile

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/host/htmlhost"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// ErrNoBaseline is wrapped by the E107 error returned when Patch gets a
// nil previous tree or PatchHost a nil host node.
var ErrNoBaseline = stderrors.New("reconcile: no baseline")

// Option configures a Patcher.
type Option func(*Patcher)

// WithAdapter sets the host adapter. The default is an htmlhost adapter.
func WithAdapter(a host.Adapter) Option {
	return func(p *Patcher) {
		p.api = a
	}
}

// WithLogger sets the logger used for per-cycle debug records.
// If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(p *Patcher) {
		p.logger = l
	}
}

// WithValidation makes every cycle validate the next tree before touching
// the host tree. Malformed trees are rejected with an error wrapping
// vdom.ErrInvalidTree.
func WithValidation(enabled bool) Option {
	return func(p *Patcher) {
		p.validate = enabled
	}
}

// Stats describes the work done by one cycle.
type Stats struct {
	Created   int           // nodes mounted
	Patched   int           // same-node pairs patched
	Removed   int           // nodes passed to removal
	Destroyed int           // nodes that went through the destroy cascade
	Moved     int           // host nodes repositioned by the keyed differ
	Inserted  int           // insert hooks dispatched
	Replaced  bool          // the root was replaced instead of patched
	Duration  time.Duration // wall time of the cycle
}

// Patcher reconciles virtual trees against a host tree. A Patcher carries
// no state between cycles other than the stats of the last one and must
// not be used by concurrent cycles.
type Patcher struct {
	api      host.Adapter
	attrs    host.Attributer // nil when the adapter has no attribute support
	hooks    hookRegistry
	logger   *slog.Logger
	validate bool
	empty    *vdom.VNode
	last     Stats
}

// New compiles modules into a hook pipeline and returns a Patcher.
func New(modules []Module, opts ...Option) *Patcher {
	p := &Patcher{
		hooks: compileHooks(modules),
		empty: &vdom.VNode{Data: &vdom.Data{}, Children: []*vdom.VNode{}},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.api == nil {
		p.api = htmlhost.New()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.attrs, _ = p.api.(host.Attributer)
	return p
}

// Adapter returns the host adapter the Patcher mutates.
func (p *Patcher) Adapter() host.Adapter {
	return p.api
}

// Stats returns the stats of the last completed cycle.
func (p *Patcher) Stats() Stats {
	return p.last
}

// Patch reconciles next against prev, the tree returned by the previous
// cycle, and returns next as the new baseline. prev must not be nil; the
// first render goes through Mount or PatchHost.
func (p *Patcher) Patch(prev, next *vdom.VNode) (*vdom.VNode, error) {
	if prev == nil {
		return nil, errors.New("E107").WithSuggestion("Use Mount or PatchHost for the first render").Wrap(ErrNoBaseline)
	}
	if p.validate {
		if err := vdom.Validate(next); err != nil {
			return nil, err
		}
	}
	return p.run(prev, nil, next), nil
}

// PatchHost reconciles next against a host node that has no virtual
// baseline, typically a placeholder element on the very first call. The
// node is described by a synthetic selector made of its tag, id and
// classes; when that does not match next, next is mounted in its place.
func (p *Patcher) PatchHost(elm host.Node, next *vdom.VNode) (*vdom.VNode, error) {
	if elm == nil {
		return nil, errors.New("E107").Wrap(ErrNoBaseline)
	}
	if p.validate {
		if err := vdom.Validate(next); err != nil {
			return nil, err
		}
	}
	return p.run(nil, elm, next), nil
}

// Mount mounts next as the last child of parent in a cycle of its own,
// without any baseline.
func (p *Patcher) Mount(parent host.Node, next *vdom.VNode) (*vdom.VNode, error) {
	if p.validate {
		if err := vdom.Validate(next); err != nil {
			return nil, err
		}
	}
	c := p.begin()
	c.createElm(next)
	p.api.AppendChild(parent, next.Elm)
	p.finish(c)
	return next, nil
}

// run is the shared entry of Patch and PatchHost. Exactly one of old and
// elm is set.
func (p *Patcher) run(old *vdom.VNode, elm host.Node, next *vdom.VNode) *vdom.VNode {
	c := p.begin()

	if old == nil {
		old = p.emptyNodeAt(elm)
	}

	if vdom.SameVNode(old, next) {
		c.patchVnode(old, next)
	} else {
		c.stats.Replaced = true
		oldElm := old.Elm
		parent := p.api.ParentNode(oldElm)
		c.createElm(next)
		if parent != nil {
			p.api.InsertBefore(parent, next.Elm, p.api.NextSibling(oldElm))
			c.removeVnodes(parent, []*vdom.VNode{old}, 0, 0)
		}
	}

	p.finish(c)
	return next
}

// begin starts a cycle and runs the module pre hooks.
func (p *Patcher) begin() *cycle {
	c := &cycle{p: p, start: time.Now()}
	for _, pre := range p.hooks.pre {
		pre()
	}
	return c
}

// finish dispatches deferred insert hooks, runs the module post hooks and
// records the cycle stats.
func (p *Patcher) finish(c *cycle) {
	for _, q := range c.insertQueue {
		q.insert(q.v)
	}
	c.stats.Inserted = len(c.insertQueue)
	for _, post := range p.hooks.post {
		post()
	}
	c.stats.Duration = time.Since(c.start)
	p.last = c.stats

	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("reconcile cycle",
			"created", c.stats.Created,
			"patched", c.stats.Patched,
			"removed", c.stats.Removed,
			"moved", c.stats.Moved,
			"replaced", c.stats.Replaced,
			"inserted", c.stats.Inserted,
			"duration", c.stats.Duration,
		)
	}
}

// emptyNodeAt wraps a raw host node in a childless VNode whose selector is
// rebuilt from the node's tag, id and classes.
func (p *Patcher) emptyNodeAt(elm host.Node) *vdom.VNode {
	var sel strings.Builder
	sel.WriteString(strings.ToLower(p.api.TagName(elm)))
	if p.attrs != nil {
		if id, ok := p.attrs.GetAttribute(elm, "id"); ok && id != "" {
			sel.WriteByte('#')
			sel.WriteString(id)
		}
		if cls, ok := p.attrs.GetAttribute(elm, "class"); ok && cls != "" {
			sel.WriteByte('.')
			sel.WriteString(strings.Join(strings.Split(cls, " "), "."))
		}
	}
	return &vdom.VNode{
		Sel:      sel.String(),
		Data:     &vdom.Data{},
		Children: []*vdom.VNode{},
		Elm:      elm,
	}
}

// queuedInsert is a node waiting for its insert hook, taken when the node
// was queued.
type queuedInsert struct {
	v      *vdom.VNode
	insert func(*vdom.VNode)
}

// cycle is the state of one reconcile call.
type cycle struct {
	p           *Patcher
	insertQueue []queuedInsert
	stats       Stats
	start       time.Time
}
