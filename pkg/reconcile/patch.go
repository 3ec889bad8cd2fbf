package reconcile

import "github.com/vango-dev/vpatch/pkg/vdom"

// patchVnode patches old into v. The two must be the same logical node,
// except for the root of a cycle.
func (c *cycle) patchVnode(old, v *vdom.VNode) {
	hook := v.Hooks()
	if hook != nil && hook.Prepatch != nil {
		hook.Prepatch(old, v)
	}

	elm := old.Elm
	v.Elm = elm
	if old == v {
		return
	}
	c.stats.Patched++

	if v.Data != nil {
		for _, update := range c.p.hooks.update {
			update(old, v)
		}
		if h := v.Hooks(); h != nil && h.Update != nil {
			h.Update(old, v)
		}
	}

	api := c.p.api
	oldCh, ch := old.Children, v.Children
	switch {
	case !v.HasText:
		switch {
		case oldCh != nil && ch != nil:
			if !sameChildren(oldCh, ch) {
				c.updateChildren(elm, oldCh, ch)
			}
		case ch != nil:
			if old.HasText {
				api.SetTextContent(elm, "")
			}
			c.addVnodes(elm, nil, ch, 0, len(ch)-1)
		case oldCh != nil:
			c.removeVnodes(elm, oldCh, 0, len(oldCh)-1)
		case old.HasText:
			api.SetTextContent(elm, "")
		}
	case !old.HasText || old.Text != v.Text:
		if oldCh != nil {
			c.removeVnodes(elm, oldCh, 0, len(oldCh)-1)
		}
		api.SetTextContent(elm, v.Text)
	}

	if hook != nil && hook.Postpatch != nil {
		hook.Postpatch(old, v)
	}
}

// sameChildren reports whether a and b are the same backing sequence.
func sameChildren(a, b []*vdom.VNode) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}
