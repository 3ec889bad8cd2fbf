package vtest

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/vpatch/pkg/host/memhost"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Recorder is a module that journals every hook call.
// Entries look like "pre", "create:li#2", "update:li#2", "post".
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(kind string, v *vdom.VNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v == nil {
		r.calls = append(r.calls, kind)
		return
	}
	r.calls = append(r.calls, kind+":"+Label(v))
}

// Calls returns a copy of the journal.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Filter returns the journal entries starting with prefix.
func (r *Recorder) Filter(prefix string) []string {
	var out []string
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the journal.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Pre implements reconcile.PreHook.
func (r *Recorder) Pre() { r.record("pre", nil) }

// Create implements reconcile.CreateHook.
func (r *Recorder) Create(_, v *vdom.VNode) { r.record("create", v) }

// Update implements reconcile.UpdateHook.
func (r *Recorder) Update(_, v *vdom.VNode) { r.record("update", v) }

// Destroy implements reconcile.DestroyHook.
func (r *Recorder) Destroy(v *vdom.VNode) { r.record("destroy", v) }

// Remove implements reconcile.RemoveHook. done is called immediately.
func (r *Recorder) Remove(v *vdom.VNode, done func()) {
	r.record("remove", v)
	done()
}

// Post implements reconcile.PostHook.
func (r *Recorder) Post() { r.record("post", nil) }

// Hooks returns per-node hooks journaling into r with a "node." prefix,
// e.g. "node.insert:li#1".
func (r *Recorder) Hooks() *vdom.Hooks {
	return &vdom.Hooks{
		Init:      func(v *vdom.VNode) { r.record("node.init", v) },
		Create:    func(_, v *vdom.VNode) { r.record("node.create", v) },
		Insert:    func(v *vdom.VNode) { r.record("node.insert", v) },
		Prepatch:  func(_, v *vdom.VNode) { r.record("node.prepatch", v) },
		Update:    func(_, v *vdom.VNode) { r.record("node.update", v) },
		Postpatch: func(_, v *vdom.VNode) { r.record("node.postpatch", v) },
		Destroy:   func(v *vdom.VNode) { r.record("node.destroy", v) },
	}
}

// Label names a node in journals: the selector, "#text" for text nodes,
// followed by "#key" when the node is keyed.
func Label(v *vdom.VNode) string {
	name := v.Sel
	if v.IsText() {
		name = "#text"
	}
	if v.Key.IsSet() {
		name += "#" + v.Key.String()
	}
	return name
}

// Deferrer is a module whose remove hook parks done callbacks until
// Release is called.
type Deferrer struct {
	mu      sync.Mutex
	pending map[string][]func()
}

// NewDeferrer creates a Deferrer.
func NewDeferrer() *Deferrer {
	return &Deferrer{pending: make(map[string][]func())}
}

// Remove implements reconcile.RemoveHook.
func (d *Deferrer) Remove(v *vdom.VNode, done func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[Label(v)] = append(d.pending[Label(v)], done)
}

// Pending reports how many callbacks are parked for label.
func (d *Deferrer) Pending(label string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending[label])
}

// Release calls the parked callbacks for label and forgets them.
func (d *Deferrer) Release(label string) {
	d.mu.Lock()
	fns := d.pending[label]
	delete(d.pending, label)
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Items builds keyed <li> nodes with the key as text, for list tests.
func Items(keys ...int) []*vdom.VNode {
	nodes := make([]*vdom.VNode, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, vdom.H("li", &vdom.Data{Key: vdom.IntKey(int64(k))}, fmt.Sprint(k)))
	}
	return nodes
}

// ExpectMarkup fails the test if the markup of n differs from want.
func ExpectMarkup(t testing.TB, n *memhost.Node, want string) {
	t.Helper()
	if got := n.String(); got != want {
		t.Errorf("markup mismatch:\n got: %s\nwant: %s", got, want)
	}
}

// ExpectStats fails the test if the structural counters differ from want.
// TextSets are not compared.
func ExpectStats(t testing.TB, a *memhost.Adapter, want memhost.Stats) {
	t.Helper()
	got := a.Stats
	got.TextSets = 0
	want.TextSets = 0
	if got != want {
		t.Errorf("host stats = %+v, want %+v", got, want)
	}
}
