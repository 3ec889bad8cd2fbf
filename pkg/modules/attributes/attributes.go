// Package attributes keeps element attributes in sync with the "attrs"
// extension field of each node.
package attributes

import (
	"maps"
	"slices"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Module implements reconcile.CreateHook and reconcile.UpdateHook.
//
// The field is a map[string]string. Values are written verbatim, so a
// boolean attribute is expressed as {"disabled": ""}. Prefixed names such
// as "xlink:href" are passed to the adapter unchanged.
type Module struct {
	api host.Attributer
}

// New returns an attributes module writing through api.
func New(api host.Attributer) *Module {
	return &Module{api: api}
}

// Attrs returns the attributes declared on v, or nil.
func Attrs(v *vdom.VNode) map[string]string {
	attrs, _ := vdom.Field[map[string]string](v.Data, vdom.ExtAttrs)
	return attrs
}

// Create implements reconcile.CreateHook.
func (m *Module) Create(empty, v *vdom.VNode) {
	m.update(empty, v)
}

// Update implements reconcile.UpdateHook.
func (m *Module) Update(old, v *vdom.VNode) {
	m.update(old, v)
}

func (m *Module) update(old, v *vdom.VNode) {
	if !v.IsElement() {
		return
	}
	oldAttrs, attrs := Attrs(old), Attrs(v)
	if len(oldAttrs) == 0 && len(attrs) == 0 {
		return
	}

	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		cur := attrs[name]
		if prev, ok := oldAttrs[name]; !ok || prev != cur {
			m.api.SetAttribute(v.Elm, name, cur)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(oldAttrs)) {
		if _, ok := attrs[name]; !ok {
			m.api.RemoveAttribute(v.Elm, name)
		}
	}
}
