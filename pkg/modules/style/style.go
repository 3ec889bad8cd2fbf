// Package style renders the "style" extension field into the inline style
// attribute and can hold back the removal of an element until a leave
// transition has finished.
package style

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Extension fields read on removal.
const (
	// ExtRemove holds declarations (map[string]string) applied when the
	// element is removed.
	ExtRemove = "style.remove"
	// ExtDelay holds how long (time.Duration) detachment waits after the
	// remove declarations were applied.
	ExtDelay = "style.delay"
)

// Module implements reconcile.CreateHook, reconcile.UpdateHook and
// reconcile.RemoveHook.
//
// Declarations are written sorted by property, for example
// {"color": "red", "margin": "0"} becomes style="color: red; margin: 0".
type Module struct {
	api   host.Attributer
	after func(time.Duration, func())
}

// Option configures a Module.
type Option func(*Module)

// WithScheduler replaces time.AfterFunc for delayed removals.
func WithScheduler(after func(d time.Duration, f func())) Option {
	return func(m *Module) {
		m.after = after
	}
}

// New returns a style module writing through api.
func New(api host.Attributer, opts ...Option) *Module {
	m := &Module{
		api: api,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Declarations returns the style declared on v, or nil.
func Declarations(v *vdom.VNode) map[string]string {
	s, _ := vdom.Field[map[string]string](v.Data, vdom.ExtStyle)
	return s
}

// Format renders declarations as an inline style value.
func Format(decls map[string]string) string {
	var b strings.Builder
	for i, prop := range slices.Sorted(maps.Keys(decls)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(prop)
		b.WriteString(": ")
		b.WriteString(decls[prop])
	}
	return b.String()
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
	prev, cur := Format(Declarations(old)), Format(Declarations(v))
	if prev == cur {
		return
	}
	if cur == "" {
		m.api.RemoveAttribute(v.Elm, "style")
		return
	}
	m.api.SetAttribute(v.Elm, "style", cur)
}

// Remove implements reconcile.RemoveHook. Without remove declarations or
// a positive delay, done is called at once.
func (m *Module) Remove(v *vdom.VNode, done func()) {
	leave, _ := vdom.Field[map[string]string](v.Data, ExtRemove)
	delay, _ := vdom.Field[time.Duration](v.Data, ExtDelay)

	if len(leave) > 0 && v.IsElement() {
		merged := maps.Clone(Declarations(v))
		if merged == nil {
			merged = make(map[string]string, len(leave))
		}
		maps.Copy(merged, leave)
		m.api.SetAttribute(v.Elm, "style", Format(merged))
	}

	if delay <= 0 {
		done()
		return
	}
	m.after(delay, done)
}
