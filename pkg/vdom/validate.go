package vdom

import (
	stderrors "errors"
	"strconv"

	"github.com/vango-dev/vpatch/internal/errors"
)

// ErrInvalidTree is wrapped by every error returned from Validate.
var ErrInvalidTree = stderrors.New("vdom: invalid tree")

// Validate checks the structural invariants of a tree that is about to be
// reconciled. It reports the first violation found in pre-order.
func Validate(v *VNode) error {
	if v == nil {
		return nil
	}
	return validate(v, nodeName(v))
}

func validate(v *VNode, path string) error {
	if v.IsElement() && (v.Sel[0] == '#' || v.Sel[0] == '.') {
		return invalid("E105", path).
			WithSuggestion("Prefix the selector with a tag, for example div" + v.Sel)
	}
	if v.Children != nil {
		switch {
		case v.IsText():
			return invalid("E102", path)
		case v.IsComment():
			return invalid("E103", path)
		case v.HasText:
			return invalid("E101", path).
				WithSuggestion("Use either text or children, not both").
				WithExample(`H("p", "hello")  or  H("p", Text("hello"), H("b", "!"))`)
		}
	}

	seen := make(map[Key]int)
	for i, child := range v.Children {
		if child == nil {
			continue
		}
		childPath := path + "/" + nodeName(child) + "[" + strconv.Itoa(i) + "]"
		if child.Key.IsSet() {
			if prev, dup := seen[child.Key]; dup {
				return invalid("E104", childPath).
					WithDetail("Key " + strconv.Quote(child.Key.String()) + " is also used by child " + strconv.Itoa(prev) + ".")
			}
			seen[child.Key] = i
		}
		if err := validate(child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func invalid(code, path string) *errors.Error {
	return errors.New(code).WithPath(path).Wrap(ErrInvalidTree)
}

// nodeName names a node inside a validation path.
func nodeName(v *VNode) string {
	if v.IsText() {
		return "#text"
	}
	return v.Sel
}
