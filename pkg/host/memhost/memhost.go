// Package memhost is a non-visual host adapter that keeps the rendered tree
// in memory and counts structural mutations. It is meant for tests,
// benchmarks and as the mirror behind the remote recorder.
package memhost

import (
	"sort"
	"strings"

	"github.com/vango-dev/vpatch/pkg/host"
)

// Kind is the node type of a memhost node.
type Kind uint8

const (
	KindElement Kind = iota
	KindText
	KindComment
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Node is a host node.
type Node struct {
	Kind     Kind
	Tag      string
	NS       string
	Text     string
	Attrs    map[string]string
	Parent   *Node
	Children []*Node
}

// index returns the position of c among n's children, or -1.
func (n *Node) index(c *Node) int {
	for i, ch := range n.Children {
		if ch == c {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	if i := p.index(n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// String renders the subtree as compact markup with sorted attributes.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
	case KindComment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	default:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(n.Attrs[k])
			b.WriteByte('"')
		}
		b.WriteByte('>')
		for _, c := range n.Children {
			c.write(b)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

// Stats counts the mutations an Adapter performed.
type Stats struct {
	Created  int // elements, text and comment nodes created
	Inserted int // detached nodes inserted or appended
	Moved    int // attached nodes repositioned
	Removed  int // nodes detached by RemoveChild
	TextSets int // SetTextContent calls
}

// Structural returns the number of creations, insertions, moves and removals.
func (s Stats) Structural() int {
	return s.Created + s.Inserted + s.Moved + s.Removed
}

// Adapter implements host.Adapter and host.Attributer over *Node.
type Adapter struct {
	Stats Stats
}

var (
	_ host.Adapter    = (*Adapter)(nil)
	_ host.Attributer = (*Adapter)(nil)
)

// New returns an empty in-memory adapter.
func New() *Adapter {
	return &Adapter{}
}

// Reset zeroes the mutation counters.
func (a *Adapter) Reset() {
	a.Stats = Stats{}
}

func node(n host.Node) *Node {
	if n == nil {
		return nil
	}
	return n.(*Node)
}

func handle(n *Node) host.Node {
	if n == nil {
		return nil
	}
	return n
}

// NewRoot returns a detached container element that is not counted as a
// creation, for mounting trees into.
func (a *Adapter) NewRoot(tag string) *Node {
	return &Node{Kind: KindElement, Tag: tag}
}

// CreateElement implements host.Adapter.
func (a *Adapter) CreateElement(tag string) host.Node {
	a.Stats.Created++
	return &Node{Kind: KindElement, Tag: tag}
}

// CreateElementNS implements host.Adapter.
func (a *Adapter) CreateElementNS(ns, tag string) host.Node {
	a.Stats.Created++
	return &Node{Kind: KindElement, Tag: tag, NS: ns}
}

// CreateTextNode implements host.Adapter.
func (a *Adapter) CreateTextNode(text string) host.Node {
	a.Stats.Created++
	return &Node{Kind: KindText, Text: text}
}

// CreateComment implements host.Adapter.
func (a *Adapter) CreateComment(text string) host.Node {
	a.Stats.Created++
	return &Node{Kind: KindComment, Text: text}
}

// InsertBefore implements host.Adapter.
func (a *Adapter) InsertBefore(parent, child, ref host.Node) {
	p, c, r := node(parent), node(child), node(ref)
	if c == r {
		return
	}
	if c.Parent != nil {
		a.Stats.Moved++
		c.detach()
	} else {
		a.Stats.Inserted++
	}
	c.Parent = p
	i := -1
	if r != nil {
		i = p.index(r)
	}
	if i < 0 {
		p.Children = append(p.Children, c)
		return
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = c
}

// RemoveChild implements host.Adapter.
func (a *Adapter) RemoveChild(parent, child host.Node) {
	c := node(child)
	if c.Parent != node(parent) {
		panic("memhost: RemoveChild called for a node that is not a child")
	}
	a.Stats.Removed++
	c.detach()
}

// AppendChild implements host.Adapter.
func (a *Adapter) AppendChild(parent, child host.Node) {
	a.InsertBefore(parent, child, nil)
}

// ParentNode implements host.Adapter.
func (a *Adapter) ParentNode(n host.Node) host.Node {
	return handle(node(n).Parent)
}

// NextSibling implements host.Adapter.
func (a *Adapter) NextSibling(n host.Node) host.Node {
	c := node(n)
	if c.Parent == nil {
		return nil
	}
	siblings := c.Parent.Children
	i := c.Parent.index(c)
	if i < 0 || i+1 >= len(siblings) {
		return nil
	}
	return siblings[i+1]
}

// TagName implements host.Adapter. Tags are reported upper-case for
// elements without a namespace, mirroring browser behavior.
func (a *Adapter) TagName(n host.Node) string {
	c := node(n)
	if c.Kind != KindElement {
		return ""
	}
	if c.NS == "" {
		return strings.ToUpper(c.Tag)
	}
	return c.Tag
}

// SetTextContent implements host.Adapter.
func (a *Adapter) SetTextContent(n host.Node, text string) {
	a.Stats.TextSets++
	c := node(n)
	if c.Kind != KindElement {
		c.Text = text
		return
	}
	for _, ch := range c.Children {
		ch.Parent = nil
	}
	c.Children = nil
	if text != "" {
		c.Children = []*Node{{Kind: KindText, Text: text, Parent: c}}
	}
}

// GetAttribute implements host.Attributer.
func (a *Adapter) GetAttribute(n host.Node, name string) (string, bool) {
	v, ok := node(n).Attrs[name]
	return v, ok
}

// SetAttribute implements host.Attributer.
func (a *Adapter) SetAttribute(n host.Node, name, value string) {
	c := node(n)
	if c.Attrs == nil {
		c.Attrs = make(map[string]string)
	}
	c.Attrs[name] = value
}

// RemoveAttribute implements host.Attributer.
func (a *Adapter) RemoveAttribute(n host.Node, name string) {
	delete(node(n).Attrs, name)
}
