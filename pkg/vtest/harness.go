package vtest

import (
	"testing"

	"github.com/vango-dev/vpatch/pkg/host/memhost"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Harness drives a Patcher over an in-memory host for tests.
type Harness struct {
	t       testing.TB
	Host    *memhost.Adapter
	Patcher *reconcile.Patcher
	root    *memhost.Node
	tree    *vdom.VNode
}

// NewHarness creates a harness whose trees are mounted inside a <div>
// container. Extra modules are registered in order.
func NewHarness(t testing.TB, modules ...reconcile.Module) *Harness {
	return NewHarnessWith(t, func(*memhost.Adapter) []reconcile.Module {
		return modules
	})
}

// NewHarnessWith is like NewHarness for modules that need the adapter,
// such as the content modules writing attributes.
func NewHarnessWith(t testing.TB, modules func(a *memhost.Adapter) []reconcile.Module) *Harness {
	a := memhost.New()
	return &Harness{
		t:       t,
		Host:    a,
		Patcher: reconcile.New(modules(a), reconcile.WithAdapter(a), reconcile.WithValidation(true)),
		root:    a.NewRoot("div"),
	}
}

// Root returns the container element.
func (h *Harness) Root() *memhost.Node {
	return h.root
}

// Tree returns the current baseline.
func (h *Harness) Tree() *vdom.VNode {
	return h.tree
}

// Render reconciles next against the current baseline, mounting it into
// the container on the first call. Host counters are reset beforehand so
// they describe this cycle only.
func (h *Harness) Render(next *vdom.VNode) *vdom.VNode {
	h.t.Helper()
	h.Host.Reset()
	var err error
	if h.tree == nil {
		h.tree, err = h.Patcher.Mount(h.root, next)
	} else {
		h.tree, err = h.Patcher.Patch(h.tree, next)
	}
	if err != nil {
		h.t.Fatalf("render: %v", err)
	}
	return h.tree
}
