// Package htmlhost is the default host adapter. It reconciles live
// golang.org/x/net/html node trees, which can then be rendered with
// html.Render or walked like any parsed document.
package htmlhost

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vpatch/pkg/host"
)

// Adapter implements host.Adapter and host.Attributer over *html.Node.
// The zero value is ready to use.
type Adapter struct{}

var (
	_ host.Adapter    = (*Adapter)(nil)
	_ host.Attributer = (*Adapter)(nil)
)

// New returns an html adapter.
func New() *Adapter {
	return &Adapter{}
}

// node converts a handle back into an *html.Node.
func node(n host.Node) *html.Node {
	if n == nil {
		return nil
	}
	return n.(*html.Node)
}

// handle converts an *html.Node into a handle, keeping nil untyped.
func handle(n *html.Node) host.Node {
	if n == nil {
		return nil
	}
	return n
}

// CreateElement implements host.Adapter.
func (a *Adapter) CreateElement(tag string) host.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
}

// CreateElementNS implements host.Adapter.
func (a *Adapter) CreateElementNS(ns, tag string) host.Node {
	n := a.CreateElement(tag).(*html.Node)
	n.Namespace = shortNamespace(ns)
	return n
}

// shortNamespace maps a namespace URI to the short form x/net/html uses.
func shortNamespace(ns string) string {
	switch ns {
	case "", host.NamespaceHTML:
		return ""
	case host.NamespaceSVG:
		return "svg"
	case host.NamespaceMath:
		return "math"
	default:
		return ns
	}
}

// CreateTextNode implements host.Adapter.
func (a *Adapter) CreateTextNode(text string) host.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// CreateComment implements host.Adapter.
func (a *Adapter) CreateComment(text string) host.Node {
	return &html.Node{Type: html.CommentNode, Data: text}
}

// InsertBefore implements host.Adapter. An attached node is detached first,
// which turns the insertion into a move.
func (a *Adapter) InsertBefore(parent, child, ref host.Node) {
	p, c, r := node(parent), node(child), node(ref)
	if c == r {
		return
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	p.InsertBefore(c, r)
}

// RemoveChild implements host.Adapter.
func (a *Adapter) RemoveChild(parent, child host.Node) {
	node(parent).RemoveChild(node(child))
}

// AppendChild implements host.Adapter.
func (a *Adapter) AppendChild(parent, child host.Node) {
	c := node(child)
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	node(parent).AppendChild(c)
}

// ParentNode implements host.Adapter.
func (a *Adapter) ParentNode(n host.Node) host.Node {
	return handle(node(n).Parent)
}

// NextSibling implements host.Adapter.
func (a *Adapter) NextSibling(n host.Node) host.Node {
	return handle(node(n).NextSibling)
}

// TagName implements host.Adapter. HTML elements report upper-case names
// the way browsers do; foreign (SVG, MathML) elements keep their case.
func (a *Adapter) TagName(n host.Node) string {
	h := node(n)
	if h.Type != html.ElementNode {
		return ""
	}
	if h.Namespace == "" {
		return strings.ToUpper(h.Data)
	}
	return h.Data
}

// SetTextContent implements host.Adapter.
func (a *Adapter) SetTextContent(n host.Node, text string) {
	h := node(n)
	switch h.Type {
	case html.TextNode, html.CommentNode:
		h.Data = text
		return
	}
	for c := h.FirstChild; c != nil; c = h.FirstChild {
		h.RemoveChild(c)
	}
	if text != "" {
		h.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// GetAttribute implements host.Attributer.
func (a *Adapter) GetAttribute(n host.Node, name string) (string, bool) {
	for _, attr := range node(n).Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttribute implements host.Attributer.
func (a *Adapter) SetAttribute(n host.Node, name, value string) {
	h := node(n)
	for i := range h.Attr {
		if h.Attr[i].Key == name {
			h.Attr[i].Val = value
			return
		}
	}
	h.Attr = append(h.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute implements host.Attributer.
func (a *Adapter) RemoveAttribute(n host.Node, name string) {
	h := node(n)
	for i := range h.Attr {
		if h.Attr[i].Key == name {
			h.Attr = append(h.Attr[:i], h.Attr[i+1:]...)
			return
		}
	}
}

// Render writes the markup of n to w.
func Render(w io.Writer, n host.Node) error {
	return html.Render(w, node(n))
}

// RenderString returns the markup of n.
func RenderString(n host.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, node(n)); err != nil {
		return ""
	}
	return buf.String()
}

// RenderChildren returns the markup of the children of n, without n itself.
func RenderChildren(n host.Node) string {
	var buf bytes.Buffer
	for c := node(n).FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Parse parses an HTML fragment in a <body> context and returns its first
// element. The returned node is attached to a synthetic container so it
// has a parent, as it would inside a live document.
func Parse(fragment string) (host.Node, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("htmlhost: parse fragment: %w", err)
	}
	var first *html.Node
	for _, n := range nodes {
		body.AppendChild(n)
		if first == nil && n.Type == html.ElementNode {
			first = n
		}
	}
	if first == nil {
		return nil, fmt.Errorf("htmlhost: fragment %q has no element", fragment)
	}
	return first, nil
}
