package reconcile

import "github.com/vango-dev/vpatch/pkg/vdom"

// Module is a pluggable unit applied to every node. It implements any
// subset of PreHook, CreateHook, UpdateHook, DestroyHook, RemoveHook and
// PostHook; a module implementing none of them is ignored.
type Module any

// PreHook is implemented by modules that observe the start of a cycle.
type PreHook interface {
	Pre()
}

// CreateHook is implemented by modules that initialize new elements.
// empty is a shared placeholder standing in for the missing old node.
type CreateHook interface {
	Create(empty, v *vdom.VNode)
}

// UpdateHook is implemented by modules that patch existing elements.
type UpdateHook interface {
	Update(old, v *vdom.VNode)
}

// DestroyHook is implemented by modules that observe nodes leaving the tree.
type DestroyHook interface {
	Destroy(v *vdom.VNode)
}

// RemoveHook is implemented by modules that may delay detachment of a
// removed element. done must eventually be called.
type RemoveHook interface {
	Remove(v *vdom.VNode, done func())
}

// PostHook is implemented by modules that observe the end of a cycle.
type PostHook interface {
	Post()
}

// hookRegistry holds the module hooks resolved by kind.
type hookRegistry struct {
	pre     []func()
	create  []func(empty, v *vdom.VNode)
	update  []func(old, v *vdom.VNode)
	destroy []func(v *vdom.VNode)
	remove  []func(v *vdom.VNode, done func())
	post    []func()
}

// compileHooks resolves modules into ordered hook lists.
func compileHooks(modules []Module) hookRegistry {
	var r hookRegistry
	for _, m := range modules {
		if m == nil {
			continue
		}
		if h, ok := m.(PreHook); ok {
			r.pre = append(r.pre, h.Pre)
		}
		if h, ok := m.(CreateHook); ok {
			r.create = append(r.create, h.Create)
		}
		if h, ok := m.(UpdateHook); ok {
			r.update = append(r.update, h.Update)
		}
		if h, ok := m.(DestroyHook); ok {
			r.destroy = append(r.destroy, h.Destroy)
		}
		if h, ok := m.(RemoveHook); ok {
			r.remove = append(r.remove, h.Remove)
		}
		if h, ok := m.(PostHook); ok {
			r.post = append(r.post, h.Post)
		}
	}
	return r
}
