package vdom

import (
	"strconv"

	"github.com/vango-dev/vpatch/pkg/host"
)

// CommentSel is the reserved selector of comment nodes.
const CommentSel = "!"

// Well-known extension fields read by the bundled modules.
const (
	ExtAttrs = "attrs"
	ExtClass = "class"
	ExtStyle = "style"
)

// VNode is the virtual node.
type VNode struct {
	Sel      string    // Selector; "" for text nodes, CommentSel for comments
	Data     *Data     // Hook and module data, nil when absent
	Children []*VNode  // nil when undefined; entries may be nil holes
	Text     string    // Text content, meaningful when HasText is set
	HasText  bool      // Text is defined
	Key      Key       // Sibling identity
	Elm      host.Node // Host node, set by the reconciler
}

// IsText reports whether v is a pure text node.
func (v *VNode) IsText() bool {
	return v.Sel == ""
}

// IsComment reports whether v is a comment node.
func (v *VNode) IsComment() bool {
	return v.Sel == CommentSel
}

// IsElement reports whether v describes an element.
func (v *VNode) IsElement() bool {
	return v.Sel != "" && v.Sel != CommentSel
}

// HasChildren reports whether the children sequence is defined.
func (v *VNode) HasChildren() bool {
	return v.Children != nil
}

// Hooks returns the node's own hooks, or nil.
func (v *VNode) Hooks() *Hooks {
	if v.Data == nil {
		return nil
	}
	return v.Data.Hook
}

// SameVNode reports whether a and b are the same logical node: equal keys
// (both unset counts as equal) and equal selectors.
func SameVNode(a, b *VNode) bool {
	return a.Key == b.Key && a.Sel == b.Sel
}

type keyKind uint8

const (
	keyNone keyKind = iota
	keyString
	keyInt
)

// Key identifies a node among its siblings. The zero Key is unset.
// Keys are comparable with ==; a string key never equals an int key.
type Key struct {
	kind keyKind
	s    string
	n    int64
}

// StringKey returns a string key.
func StringKey(s string) Key {
	return Key{kind: keyString, s: s}
}

// IntKey returns an integer key.
func IntKey(n int64) Key {
	return Key{kind: keyInt, n: n}
}

// IsSet reports whether the key holds a value.
func (k Key) IsSet() bool {
	return k.kind != keyNone
}

// String returns the key value as text, or "" for an unset key.
func (k Key) String() string {
	switch k.kind {
	case keyString:
		return k.s
	case keyInt:
		return strconv.FormatInt(k.n, 10)
	default:
		return ""
	}
}

// Data is the record consumed by hooks and modules.
type Data struct {
	Key  Key
	NS   string // Namespace URI for the element
	Hook *Hooks
	Ext  map[string]any // Module-specific fields
}

// Get returns the extension field name.
func (d *Data) Get(name string) (any, bool) {
	if d == nil || d.Ext == nil {
		return nil, false
	}
	v, ok := d.Ext[name]
	return v, ok
}

// Set stores an extension field and returns d for chaining.
func (d *Data) Set(name string, value any) *Data {
	if d.Ext == nil {
		d.Ext = make(map[string]any)
	}
	d.Ext[name] = value
	return d
}

// Field returns the extension field name of d if it is present and holds
// a T.
func Field[T any](d *Data, name string) (T, bool) {
	var zero T
	v, ok := d.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Hooks are the per-node lifecycle callbacks. All are optional.
type Hooks struct {
	// Init runs before the node is mounted. It may replace v.Data.
	Init func(v *VNode)
	// Create runs after the element and its children are created.
	Create func(empty, v *VNode)
	// Insert runs once the whole tree of the cycle is attached.
	Insert func(v *VNode)
	// Prepatch runs before a node is patched.
	Prepatch func(old, v *VNode)
	// Update runs after module update hooks when a node is patched.
	Update func(old, v *VNode)
	// Postpatch runs last when a node is patched.
	Postpatch func(old, v *VNode)
	// Destroy runs when the node leaves the tree, directly or through an ancestor.
	Destroy func(v *VNode)
	// Remove runs when the node itself is removed. The host node is detached
	// once done has been called.
	Remove func(v *VNode, done func())
}

// Clone returns a deep copy of v without host references. Data records are
// copied shallowly: hooks and extension values are shared.
func Clone(v *VNode) *VNode {
	if v == nil {
		return nil
	}
	c := &VNode{
		Sel:     v.Sel,
		Text:    v.Text,
		HasText: v.HasText,
		Key:     v.Key,
	}
	if v.Data != nil {
		d := *v.Data
		if v.Data.Ext != nil {
			d.Ext = make(map[string]any, len(v.Data.Ext))
			for k, val := range v.Data.Ext {
				d.Ext[k] = val
			}
		}
		c.Data = &d
	}
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, ch := range v.Children {
			c.Children[i] = Clone(ch)
		}
	}
	return c
}
