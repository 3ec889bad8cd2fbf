package reconcile

import (
	"strings"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// selector is a parsed element selector.
type selector struct {
	tag      string
	id       string
	hasID    bool
	class    string // space separated
	hasClass bool
}

// parseSelector splits sel at its first '#' and at the first '.' found at
// or after it. "div#main.a.b" yields tag "div", id "main", class "a b".
func parseSelector(sel string) selector {
	hashIdx := strings.IndexByte(sel, '#')
	from := 0
	if hashIdx > 0 {
		from = hashIdx
	}
	dotIdx := strings.IndexByte(sel[from:], '.')
	if dotIdx >= 0 {
		dotIdx += from
	}

	hash, dot := len(sel), len(sel)
	if hashIdx > 0 {
		hash = hashIdx
	}
	if dotIdx > 0 {
		dot = dotIdx
	}

	s := selector{tag: sel}
	if hashIdx != -1 || dotIdx != -1 {
		s.tag = sel[:min(hash, dot)]
	}
	if hash < dot {
		s.id = sel[hash+1 : dot]
		s.hasID = true
	}
	if dotIdx > 0 {
		s.class = strings.ReplaceAll(sel[dot+1:], ".", " ")
		s.hasClass = true
	}
	return s
}

// createElm mounts v and its subtree and returns the new host node.
// Nodes with an insert hook are queued for dispatch at the end of the cycle.
func (c *cycle) createElm(v *vdom.VNode) host.Node {
	api := c.p.api
	c.stats.Created++

	if h := v.Hooks(); h != nil && h.Init != nil {
		h.Init(v)
	}

	switch {
	case v.IsComment():
		v.Elm = api.CreateComment(v.Text)

	case v.IsElement():
		sel := parseSelector(v.Sel)
		var elm host.Node
		if v.Data != nil && v.Data.NS != "" {
			elm = api.CreateElementNS(v.Data.NS, sel.tag)
		} else {
			elm = api.CreateElement(sel.tag)
		}
		v.Elm = elm
		if attrs := c.p.attrs; attrs != nil {
			if sel.hasID {
				attrs.SetAttribute(elm, "id", sel.id)
			}
			if sel.hasClass {
				attrs.SetAttribute(elm, "class", sel.class)
			}
		}

		for _, create := range c.p.hooks.create {
			create(c.p.empty, v)
		}

		if v.Children != nil {
			for _, ch := range v.Children {
				if ch == nil {
					continue
				}
				api.AppendChild(elm, c.createElm(ch))
			}
		} else if v.HasText {
			api.AppendChild(elm, api.CreateTextNode(v.Text))
		}

		if h := v.Hooks(); h != nil {
			if h.Create != nil {
				h.Create(c.p.empty, v)
			}
			if h.Insert != nil {
				c.insertQueue = append(c.insertQueue, queuedInsert{v: v, insert: h.Insert})
			}
		}

	default:
		v.Elm = api.CreateTextNode(v.Text)
	}

	return v.Elm
}

// addVnodes mounts vnodes[start..end] and inserts them before ref
// (appending when ref is nil).
func (c *cycle) addVnodes(parent, ref host.Node, vnodes []*vdom.VNode, start, end int) {
	for ; start <= end; start++ {
		ch := vnodes[start]
		if ch == nil {
			continue
		}
		c.p.api.InsertBefore(parent, c.createElm(ch), ref)
	}
}
