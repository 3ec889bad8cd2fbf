package reconcile

import (
	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// at returns vnodes[i], or nil when i is outside the slice.
func at(vnodes []*vdom.VNode, i int) *vdom.VNode {
	if i < 0 || i >= len(vnodes) {
		return nil
	}
	return vnodes[i]
}

// keyToOldIdx maps the keys of oldCh[begin..end] to their index.
func keyToOldIdx(oldCh []*vdom.VNode, begin, end int) map[vdom.Key]int {
	m := make(map[vdom.Key]int, end-begin+1)
	for i := begin; i <= end; i++ {
		if ch := oldCh[i]; ch != nil && ch.Key.IsSet() {
			m[ch.Key] = i
		}
	}
	return m
}

// updateChildren reconciles two child lists of parent by scanning both
// from their ends inward. Matched old entries are patched and, when their
// host order changes, moved; new entries without a match are mounted; old
// entries left over are removed. Entries matched through the key map are
// set to nil in oldCh and skipped afterwards.
func (c *cycle) updateChildren(parent host.Node, oldCh, newCh []*vdom.VNode) {
	api := c.p.api

	oldStartIdx, newStartIdx := 0, 0
	oldEndIdx, newEndIdx := len(oldCh)-1, len(newCh)-1
	oldStart, oldEnd := at(oldCh, oldStartIdx), at(oldCh, oldEndIdx)
	newStart, newEnd := at(newCh, newStartIdx), at(newCh, newEndIdx)

	var oldKeyToIdx map[vdom.Key]int

	for oldStartIdx <= oldEndIdx && newStartIdx <= newEndIdx {
		switch {
		case oldStart == nil:
			oldStartIdx++
			oldStart = at(oldCh, oldStartIdx)
		case oldEnd == nil:
			oldEndIdx--
			oldEnd = at(oldCh, oldEndIdx)
		case newStart == nil:
			newStartIdx++
			newStart = at(newCh, newStartIdx)
		case newEnd == nil:
			newEndIdx--
			newEnd = at(newCh, newEndIdx)

		case vdom.SameVNode(oldStart, newStart):
			c.patchVnode(oldStart, newStart)
			oldStartIdx++
			newStartIdx++
			oldStart, newStart = at(oldCh, oldStartIdx), at(newCh, newStartIdx)

		case vdom.SameVNode(oldEnd, newEnd):
			c.patchVnode(oldEnd, newEnd)
			oldEndIdx--
			newEndIdx--
			oldEnd, newEnd = at(oldCh, oldEndIdx), at(newCh, newEndIdx)

		case vdom.SameVNode(oldStart, newEnd):
			// Moved right.
			c.patchVnode(oldStart, newEnd)
			api.InsertBefore(parent, oldStart.Elm, api.NextSibling(oldEnd.Elm))
			c.stats.Moved++
			oldStartIdx++
			newEndIdx--
			oldStart, newEnd = at(oldCh, oldStartIdx), at(newCh, newEndIdx)

		case vdom.SameVNode(oldEnd, newStart):
			// Moved left.
			c.patchVnode(oldEnd, newStart)
			api.InsertBefore(parent, oldEnd.Elm, oldStart.Elm)
			c.stats.Moved++
			oldEndIdx--
			newStartIdx++
			oldEnd, newStart = at(oldCh, oldEndIdx), at(newCh, newStartIdx)

		default:
			if oldKeyToIdx == nil {
				oldKeyToIdx = keyToOldIdx(oldCh, oldStartIdx, oldEndIdx)
			}
			var toMove *vdom.VNode
			if newStart.Key.IsSet() {
				if idx, ok := oldKeyToIdx[newStart.Key]; ok {
					toMove = oldCh[idx]
					if toMove != nil && toMove.Sel == newStart.Sel {
						c.patchVnode(toMove, newStart)
						oldCh[idx] = nil
						api.InsertBefore(parent, toMove.Elm, oldStart.Elm)
						c.stats.Moved++
					} else {
						// A hole (duplicate new key) or an incompatible element
						// under the same key: mount fresh and leave the old
						// entry for the final cleanup.
						toMove = nil
					}
				}
			}
			if toMove == nil {
				api.InsertBefore(parent, c.createElm(newStart), oldStart.Elm)
			}
			newStartIdx++
			newStart = at(newCh, newStartIdx)
		}
	}

	if newStartIdx <= newEndIdx {
		var ref host.Node
		if next := at(newCh, newEndIdx+1); next != nil {
			ref = next.Elm
		}
		c.addVnodes(parent, ref, newCh, newStartIdx, newEndIdx)
	}
	if oldStartIdx <= oldEndIdx {
		c.removeVnodes(parent, oldCh, oldStartIdx, oldEndIdx)
	}
}
