// Package class toggles class tokens from the "class" extension field.
//
// Tokens set by the selector ("div.card") are kept: the module only adds
// and removes the tokens it manages.
package class

import (
	"maps"
	"slices"
	"strings"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Module implements reconcile.CreateHook and reconcile.UpdateHook.
type Module struct {
	api host.Attributer
}

// New returns a class module writing through api.
func New(api host.Attributer) *Module {
	return &Module{api: api}
}

// Classes returns the class toggles declared on v, or nil.
func Classes(v *vdom.VNode) map[string]bool {
	c, _ := vdom.Field[map[string]bool](v.Data, vdom.ExtClass)
	return c
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
	oldClass, klass := Classes(old), Classes(v)
	if len(oldClass) == 0 && len(klass) == 0 {
		return
	}

	current, _ := m.api.GetAttribute(v.Elm, "class")
	tokens := strings.Fields(current)
	changed := false

	for _, name := range slices.Sorted(maps.Keys(oldClass)) {
		if _, ok := klass[name]; !ok && oldClass[name] {
			tokens, changed = remove(tokens, name), true
		}
	}
	for _, name := range slices.Sorted(maps.Keys(klass)) {
		cur := klass[name]
		if prev, ok := oldClass[name]; ok && prev == cur {
			continue
		}
		if cur {
			if !slices.Contains(tokens, name) {
				tokens = append(tokens, name)
			}
		} else {
			tokens = remove(tokens, name)
		}
		changed = true
	}

	if !changed {
		return
	}
	switch joined := strings.Join(tokens, " "); {
	case joined == current:
	case joined == "":
		m.api.RemoveAttribute(v.Elm, "class")
	default:
		m.api.SetAttribute(v.Elm, "class", joined)
	}
}

func remove(tokens []string, name string) []string {
	return slices.DeleteFunc(tokens, func(t string) bool { return t == name })
}
