package reconcile_test

import (
	"fmt"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/host/memhost"
)

// traceAdapter journals every mutating call of an in-memory host.
type traceAdapter struct {
	*memhost.Adapter
	ops []string
}

func newTraceAdapter() *traceAdapter {
	return &traceAdapter{Adapter: memhost.New()}
}

func label(n host.Node) string {
	m := n.(*memhost.Node)
	switch m.Kind {
	case memhost.KindText:
		return fmt.Sprintf("%q", m.Text)
	case memhost.KindComment:
		return "<!--" + m.Text + "-->"
	}
	if id, ok := m.Attrs["id"]; ok {
		return m.Tag + "#" + id
	}
	return m.Tag
}

func (a *traceAdapter) CreateElement(tag string) host.Node {
	n := a.Adapter.CreateElement(tag)
	a.ops = append(a.ops, "create "+tag)
	return n
}

func (a *traceAdapter) CreateElementNS(ns, tag string) host.Node {
	n := a.Adapter.CreateElementNS(ns, tag)
	a.ops = append(a.ops, "createNS "+tag)
	return n
}

func (a *traceAdapter) InsertBefore(parent, child, ref host.Node) {
	if ref == nil {
		a.ops = append(a.ops, "insert "+label(child)+" into "+label(parent))
	} else {
		a.ops = append(a.ops, "insert "+label(child)+" before "+label(ref))
	}
	a.Adapter.InsertBefore(parent, child, ref)
}

func (a *traceAdapter) AppendChild(parent, child host.Node) {
	a.ops = append(a.ops, "append "+label(child)+" to "+label(parent))
	a.Adapter.AppendChild(parent, child)
}

func (a *traceAdapter) RemoveChild(parent, child host.Node) {
	a.ops = append(a.ops, "remove "+label(child))
	a.Adapter.RemoveChild(parent, child)
}

func (a *traceAdapter) SetTextContent(n host.Node, text string) {
	a.ops = append(a.ops, fmt.Sprintf("text %s %q", label(n), text))
	a.Adapter.SetTextContent(n, text)
}

func (a *traceAdapter) reset() {
	a.ops = nil
	a.Adapter.Reset()
}

// attached reports whether n is connected to root.
func attached(n, root *memhost.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
