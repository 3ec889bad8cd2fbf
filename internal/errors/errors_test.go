package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "tree error",
			code:    "E101",
			wantMsg: "Node has both text and children",
			wantCat: CategoryTree,
		},
		{
			name:    "protocol error",
			code:    "E061",
			wantMsg: "Unknown node ID in op stream",
			wantCat: CategoryProtocol,
		},
		{
			name:    "config error",
			code:    "E121",
			wantMsg: "Unknown host adapter",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "tree.yaml")
	if err.Message != `file "tree.yaml" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "tree.yaml" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E101")
	if got, want := err.Error(), "E101: Node has both text and children"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.WithPath("div/p[2]")
	if got, want := err.Error(), "E101: div/p[2]: Node has both text and children"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestUnwrapAndFromError(t *testing.T) {
	sentinel := stderrors.New("boom")
	err := New("E060").Wrap(sentinel)
	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped error")
	}

	if FromError(nil, "E060") != nil {
		t.Error("FromError(nil) should be nil")
	}

	wrapped := fmt.Errorf("decode: %w", err)
	if got := FromError(wrapped, "E999"); got != err {
		t.Errorf("FromError should return the existing *Error, got %v", got)
	}

	fresh := FromError(io.EOF, "E060")
	if fresh.Code != "E060" || !stderrors.Is(fresh, io.EOF) {
		t.Errorf("FromError(io.EOF) = %v, want E060 wrapping EOF", fresh)
	}

	if Code(wrapped) != "E060" {
		t.Errorf("Code() = %q, want E060", Code(wrapped))
	}
	if Code(io.EOF) != "" {
		t.Errorf("Code(io.EOF) = %q, want empty", Code(io.EOF))
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E104").
		WithPath("ul/li[3]").
		WithSuggestion("Give every list item a distinct key").
		WithExample(`vdom.H("li", &vdom.Data{Key: vdom.IntKey(3)})`)

	out := err.Format()
	for _, want := range []string{
		"ERROR E104: Duplicate key among siblings",
		"at ul/li[3]",
		"Hint: Give every list item a distinct key",
		"Example:",
		"Learn more: https://vpatch.dev/docs/errors/E104",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E102").WithPath("div/#text")
	if got, want := err.FormatCompact(), "div/#text: E102: Text node has children"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E103").WithPath("div/!")

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "E103" {
		t.Errorf("code = %v, want E103", decoded["code"])
	}
	if decoded["path"] != "div/!" {
		t.Errorf("path = %v, want div/!", decoded["path"])
	}
	if decoded["category"] != string(CategoryTree) {
		t.Errorf("category = %v, want tree", decoded["category"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("outer: %w", New("E140")))
	if !strings.Contains(buf.String(), "ERROR E140") {
		t.Errorf("Fprint() = %q, want coded header", buf.String())
	}

	buf.Reset()
	Fprint(&buf, io.EOF)
	if !strings.Contains(buf.String(), "ERROR: EOF") {
		t.Errorf("Fprint() = %q, want plain header", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
