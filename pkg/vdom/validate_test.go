package vdom

import (
	stderrors "errors"
	"testing"

	"github.com/vango-dev/vpatch/internal/errors"
)

func li(key int64, text string) *VNode {
	return H("li", &Data{Key: IntKey(key)}, text)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		tree     *VNode
		wantCode string
		wantPath string
	}{
		{
			name: "valid tree",
			tree: H("div#app", H("ul", li(1, "a"), li(2, "b")), "tail", Comment("c")),
		},
		{
			name: "nil tree",
		},
		{
			name:     "text and children",
			tree:     &VNode{Sel: "p", Text: "x", HasText: true, Children: []*VNode{Text("y")}},
			wantCode: "E101",
			wantPath: "p",
		},
		{
			name:     "text node with children",
			tree:     H("div", &VNode{Text: "x", HasText: true, Children: []*VNode{}}),
			wantCode: "E102",
			wantPath: "div/#text[0]",
		},
		{
			name:     "comment with children",
			tree:     H("div", &VNode{Sel: CommentSel, Children: []*VNode{Text("x")}}),
			wantCode: "E103",
			wantPath: "div/![0]",
		},
		{
			name:     "duplicate sibling keys",
			tree:     H("ul", li(1, "a"), li(2, "b"), li(1, "c")),
			wantCode: "E104",
			wantPath: "ul/li[2]",
		},
		{
			name:     "selector without tag",
			tree:     H("div", H("section", H(".card"))),
			wantCode: "E105",
			wantPath: "div/section[0]/.card[0]",
		},
		{
			name: "same key in different lists",
			tree: H("div", H("ul", li(1, "a")), H("ol", li(1, "a"))),
		},
		{
			name: "string and int keys differ",
			tree: H("ul", li(1, "a"), H("li", &Data{Key: StringKey("1")}, "b")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tree)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want %s", tt.wantCode)
			}
			if !stderrors.Is(err, ErrInvalidTree) {
				t.Errorf("error %v does not wrap ErrInvalidTree", err)
			}
			if got := errors.Code(err); got != tt.wantCode {
				t.Errorf("Code = %s, want %s", got, tt.wantCode)
			}
			var verr *errors.Error
			if !stderrors.As(err, &verr) {
				t.Fatalf("error %v is not a coded error", err)
			}
			if verr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestValidateSkipsHoles(t *testing.T) {
	tree := &VNode{Sel: "ul", Data: &Data{}, Children: []*VNode{nil, li(1, "a"), nil}}
	if err := Validate(tree); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
