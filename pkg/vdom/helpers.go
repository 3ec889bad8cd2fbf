package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Text:    content,
		HasText: true,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(content string) *VNode {
	return H(CommentSel, content)
}

// Keyed sets the key of an element node and returns it.
func Keyed(key Key, v *VNode) *VNode {
	if v.Data == nil {
		v.Data = &Data{}
	}
	v.Data.Key = key
	v.Key = key
	return v
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// Map creates one node per item, in order.
func Map[T any](items []T, fn func(T) *VNode) []*VNode {
	nodes := make([]*VNode, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, fn(item))
	}
	return nodes
}
