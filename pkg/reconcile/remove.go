package reconcile

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// removeLatch detaches a host node once every participant has signaled.
type removeLatch struct {
	remaining atomic.Int32
	detach    func()
}

func newRemoveLatch(participants int, detach func()) *removeLatch {
	l := &removeLatch{detach: detach}
	l.remaining.Store(int32(participants))
	return l
}

// participant returns a done callback that counts at most once.
func (l *removeLatch) participant() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if l.remaining.Add(-1) == 0 {
				l.detach()
			}
		})
	}
}

// removeVnodes removes vnodes[start..end] from parent. Elements and
// comments go through the destroy cascade and the removal latch; text
// nodes are detached at once.
func (c *cycle) removeVnodes(parent host.Node, vnodes []*vdom.VNode, start, end int) {
	api := c.p.api
	for ; start <= end; start++ {
		ch := vnodes[start]
		if ch == nil {
			continue
		}
		c.stats.Removed++
		if ch.IsText() {
			api.RemoveChild(parent, ch.Elm)
			continue
		}

		c.invokeDestroyHook(ch)

		elm := ch.Elm
		latch := newRemoveLatch(len(c.p.hooks.remove)+1, func() {
			if p := api.ParentNode(elm); p != nil {
				api.RemoveChild(p, elm)
			}
		})
		for _, remove := range c.p.hooks.remove {
			remove(ch, latch.participant())
		}
		done := latch.participant()
		if h := ch.Hooks(); h != nil && h.Remove != nil {
			h.Remove(ch, done)
		} else {
			done()
		}
	}
}

// invokeDestroyHook runs the destroy cascade over v's subtree, pre-order:
// the node's own hook, then the module hooks, then its children.
func (c *cycle) invokeDestroyHook(v *vdom.VNode) {
	c.stats.Destroyed++
	if h := v.Hooks(); h != nil && h.Destroy != nil {
		h.Destroy(v)
	}
	for _, destroy := range c.p.hooks.destroy {
		destroy(v)
	}
	for _, ch := range v.Children {
		if ch == nil || ch.IsText() {
			continue
		}
		c.invokeDestroyHook(ch)
	}
}
