package vdom

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vpatch/internal/errors"
)

// treeNode is the YAML/JSON shape of a tree file node. A bare scalar is a
// text node.
type treeNode struct {
	Sel      string            `yaml:"sel"`
	Key      any               `yaml:"key"`
	NS       string            `yaml:"ns"`
	Attrs    map[string]string `yaml:"attrs"`
	Class    map[string]bool   `yaml:"class"`
	Style    map[string]string `yaml:"style"`
	Text     *string           `yaml:"text"`
	Children []treeNode        `yaml:"children"`

	scalar   string
	isScalar bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *treeNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.scalar = value.Value
		t.isScalar = true
		return nil
	}
	type plain treeNode
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = treeNode(p)
	return nil
}

// Decode reads a tree description in YAML or JSON:
//
//	sel: ul#list
//	children:
//	  - {sel: li, key: 1, text: one}
//	  - {sel: li, key: 2, attrs: {title: second}, text: two}
//	  - plain text child
func Decode(r io.Reader) (*VNode, error) {
	var root treeNode
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.New("E106").Wrap(fmt.Errorf("decode tree: %w", err))
	}
	v, err := root.build("root")
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeFile reads a tree description from path.
func DecodeFile(path string) (*VNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree file: %w", err)
	}
	defer f.Close()
	v, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (t *treeNode) build(path string) (*VNode, error) {
	if t.isScalar {
		return Text(t.scalar), nil
	}
	if t.Sel == "" {
		if t.Text == nil || len(t.Children) > 0 {
			return nil, errors.New("E106").WithPath(path).
				WithDetail("A node without sel must be a text node with a text field.")
		}
		return Text(*t.Text), nil
	}

	data := &Data{NS: t.NS}
	key, err := decodeKey(t.Key)
	if err != nil {
		return nil, errors.New("E106").WithPath(path).Wrap(err)
	}
	data.Key = key
	if t.Attrs != nil {
		data.Set(ExtAttrs, t.Attrs)
	}
	if t.Class != nil {
		data.Set(ExtClass, t.Class)
	}
	if t.Style != nil {
		data.Set(ExtStyle, t.Style)
	}

	if t.Text != nil {
		return H(t.Sel, data, *t.Text), nil
	}
	if t.Children == nil {
		return H(t.Sel, data), nil
	}
	children := make([]*VNode, 0, len(t.Children))
	for i := range t.Children {
		child, err := t.Children[i].build(fmt.Sprintf("%s/%s[%d]", path, t.Sel, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return H(t.Sel, data, children), nil
}

func decodeKey(raw any) (Key, error) {
	switch k := raw.(type) {
	case nil:
		return Key{}, nil
	case string:
		return StringKey(k), nil
	case int:
		return IntKey(int64(k)), nil
	case int64:
		return IntKey(k), nil
	case uint64:
		return IntKey(int64(k)), nil
	default:
		return Key{}, fmt.Errorf("key must be a string or an integer, got %T", raw)
	}
}
