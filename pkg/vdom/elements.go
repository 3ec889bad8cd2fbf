package vdom

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/vpatch/pkg/host"
)

// H creates a VNode for the selector sel.
// Arguments can be: nil, *Data, *VNode, []*VNode, string, numbers or
// fmt.Stringer. A single primitive argument becomes the node's text; any
// other combination becomes the children list, with primitives turned
// into text nodes and nil children dropped.
func H(sel string, args ...any) *VNode {
	node := &VNode{Sel: sel}

	var content []any
	listGiven := false
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case *Data:
			if v != nil {
				node.Data = v
			}
		case []*VNode:
			listGiven = true
			content = append(content, v)
		default:
			content = append(content, v)
		}
	}

	if node.Data == nil {
		node.Data = &Data{}
	}
	node.Key = node.Data.Key

	if len(content) == 1 && !listGiven {
		if s, ok := primitive(content[0]); ok {
			node.Text = s
			node.HasText = true
			content = nil
		}
	}

	if len(content) > 0 || listGiven {
		node.Children = make([]*VNode, 0, len(content))
		for _, c := range content {
			node.Children = appendChild(node.Children, c)
		}
	}

	if isSVGSel(sel) {
		addNS(node.Data, node.Children, sel)
	}
	return node
}

// appendChild normalizes one content argument into children.
func appendChild(children []*VNode, c any) []*VNode {
	switch v := c.(type) {
	case *VNode:
		if v != nil {
			children = append(children, v)
		}
	case []*VNode:
		for _, ch := range v {
			if ch != nil {
				children = append(children, ch)
			}
		}
	default:
		if s, ok := primitive(v); ok {
			children = append(children, Text(s))
		}
	}
	return children
}

// primitive converts the values that may stand in for text.
func primitive(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

// isSVGSel reports whether sel names an svg element: "svg", "svg.x" or "svg#x".
func isSVGSel(sel string) bool {
	if len(sel) < 3 || sel[:3] != "svg" {
		return false
	}
	return len(sel) == 3 || sel[3] == '.' || sel[3] == '#'
}

// addNS puts a subtree in the SVG namespace. Children of foreignObject
// keep their own namespace.
func addNS(data *Data, children []*VNode, sel string) {
	data.NS = host.NamespaceSVG
	if sel == "foreignObject" {
		return
	}
	for _, child := range children {
		if child == nil || child.Data == nil {
			continue
		}
		addNS(child.Data, child.Children, child.Sel)
	}
}
