package syntax

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := NewParser().Parse(context.Background(), "bundle.js", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func TestParse_ModuleTable(t *testing.T) {
	src := `[{ "a": function () { return 1; }, b: function () {} }]`
	tree := parse(t, src)

	if tree.Root.Kind != KindProgram {
		t.Fatalf("root kind = %v, want Program", tree.Root.Kind)
	}

	var pairs []*Node
	Walk(tree.Root, func(n *Node, _ []*Node) bool {
		if n.Kind == KindPair {
			pairs = append(pairs, n)
		}
		return true
	})
	if len(pairs) != 2 {
		t.Fatalf("found %d pairs, want 2", len(pairs))
	}

	key := pairs[0].ChildByField(FieldKey)
	if key == nil || key.Kind != KindStringLiteral {
		t.Fatalf("first key = %v, want string literal", key)
	}
	if got := tree.Text(key); got != `"a"` {
		t.Errorf("first key text = %q", got)
	}
	value := pairs[0].ChildByField(FieldValue)
	if value == nil || value.Kind != KindFunction {
		t.Fatalf("first value = %v, want function", value)
	}
	if got := tree.Text(value); got != "function () { return 1; }" {
		t.Errorf("first value text = %q", got)
	}

	if key := pairs[1].ChildByField(FieldKey); key == nil || key.Kind != KindIdentifier {
		t.Errorf("second key = %v, want identifier", key)
	}
}

func TestParse_ImportExportAnywhere(t *testing.T) {
	src := "const x = 1;\nimport a from 'a';\nexport default [{ a: function () {} }];\n"
	tree := parse(t, src)
	if tree.Root.HasError {
		t.Fatal("tree has errors")
	}
}

func TestParse_Positions(t *testing.T) {
	tree := parse(t, "\n\n[{\n  a: function () {}\n}]")

	var pair *Node
	Walk(tree.Root, func(n *Node, _ []*Node) bool {
		if n.Kind == KindPair {
			pair = n
			return false
		}
		return true
	})
	if pair == nil {
		t.Fatal("no pair found")
	}
	if pair.Line() != 4 || pair.Start.Column != 2 {
		t.Errorf("pair at %d:%d, want 4:2", pair.Line(), pair.Start.Column)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "broken.js", []byte("[{ a: function ( { }]"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("error %v does not wrap ErrSyntax", err)
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error %T is not a *SyntaxError", err)
	}
	if serr.Path != "broken.js" || serr.Line != 1 {
		t.Errorf("unexpected location %s:%d", serr.Path, serr.Line)
	}
	if !strings.HasPrefix(err.Error(), "broken.js:1:") {
		t.Errorf("message %q does not start with the location", err.Error())
	}
}

func TestParse_Limits(t *testing.T) {
	ctx := context.Background()

	_, err := NewParser(WithMaxFileSize(4)).Parse(ctx, "big.js", []byte("[1, 2, 3]"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized input: got %v, want ErrFileTooLarge", err)
	}

	_, err = NewParser().Parse(ctx, "bad.js", []byte{'[', 0xff, ']'})
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("invalid UTF-8: got %v, want ErrInvalidContent", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewParser().Parse(canceled, "a.js", []byte("[]"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: got %v, want context.Canceled", err)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	tree := parse(t, "")
	if tree.Root == nil || tree.Root.Kind != KindProgram {
		t.Fatalf("root = %v, want empty program", tree.Root)
	}
	if len(tree.Root.Children) != 0 {
		t.Errorf("empty program has %d children", len(tree.Root.Children))
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		typ   string
		named bool
		want  Kind
	}{
		{"array", true, KindArrayLiteral},
		{"object", true, KindObjectLiteral},
		{"pair", true, KindPair},
		{"property_identifier", true, KindIdentifier},
		{"arrow_function", true, KindFunction},
		{"function_expression", true, KindFunction},
		{"template_string", true, KindTemplateString},
		{"ERROR", true, KindError},
		{"(", false, KindToken},
		{"shorthand_property_identifier", true, KindShorthandProperty},
		{"spread_element", true, KindOther},
	}
	for _, tt := range tests {
		if got := KindOf(tt.typ, tt.named); got != tt.want {
			t.Errorf("KindOf(%q, %v) = %v, want %v", tt.typ, tt.named, got, tt.want)
		}
	}
}

func TestTreeText_OutOfRange(t *testing.T) {
	tree := &Tree{Source: []byte("abc")}
	if got := tree.Text(&Node{StartByte: 1, EndByte: 10}); got != "" {
		t.Errorf("Text = %q, want empty", got)
	}
	if got := tree.Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
}
