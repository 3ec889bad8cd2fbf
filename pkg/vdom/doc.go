// Package vdom provides the virtual node model reconciled by vpatch.
//
// A VNode describes one position of a tree: an element, a text node or a
// comment. Trees are built fresh for every update cycle, usually with H,
// and handed to a reconcile.Patcher together with the tree accepted in the
// previous cycle.
//
// # Core Types
//
// VNode holds a selector, optional Data, and either children or text.
// Data carries the well-known fields (key, namespace, hooks) plus an open
// mapping of module-specific fields read through Field.
//
// # Builder
//
//	H("ul#list.items",
//	    H("li", &Data{Key: IntKey(1)}, "one"),
//	    H("li", &Data{Key: IntKey(2)}, "two"),
//	)
//
// A single primitive argument becomes the node's text; otherwise every
// argument becomes a child and primitives are turned into text nodes.
// Trees rooted at an svg selector are put in the SVG namespace, except for
// the children of foreignObject.
//
// # Identity
//
// SameVNode decides whether a host node can be reused: two nodes are the
// same logical node when their keys and selectors are equal.
package vdom
