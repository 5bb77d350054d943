// Package codegen turns a syntax subtree back into source text.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"unbundle/internal/syntax"
)

var (
	// ErrInvalidNode is returned for a nil node or a span outside the source.
	ErrInvalidNode = errors.New("invalid node")

	// ErrUnsafeNode is returned when the subtree contains parse errors and
	// cannot be reprinted faithfully.
	ErrUnsafeNode = errors.New("subtree contains syntax errors")
)

// Options controls how a subtree is rendered.
type Options struct {
	// RetainLines emits one leading newline per source row above the node so
	// that the node starts on its original line.
	RetainLines bool `yaml:"retain_lines"`

	// Comments keeps comments found inside the subtree.
	Comments bool `yaml:"comments"`

	// Compact joins tokens with the minimal separator instead of keeping the
	// original layout.
	Compact bool `yaml:"compact"`

	// RetainFunctionParens keeps parentheses wrapping a function expression.
	RetainFunctionParens bool `yaml:"retain_function_parens"`

	// Dedent strips the indentation shared by the continuation lines of an
	// expanded rendering.
	Dedent bool `yaml:"dedent"`
}

// DefaultOptions returns expanded, comment-preserving, line-retaining output.
func DefaultOptions() Options {
	return Options{
		RetainLines:          true,
		Comments:             true,
		Compact:              false,
		RetainFunctionParens: true,
		Dedent:               true,
	}
}

// Generator renders a subtree of tree as source text.
type Generator interface {
	Generate(tree *syntax.Tree, node *syntax.Node, opts Options) (string, error)
}

// SourceGenerator renders subtrees from the tree's original source bytes, so
// the output is token-for-token identical to the input apart from the
// layout changes the options request.
type SourceGenerator struct{}

// NewSourceGenerator returns a SourceGenerator.
func NewSourceGenerator() *SourceGenerator {
	return &SourceGenerator{}
}

// Generate implements Generator.
func (g *SourceGenerator) Generate(tree *syntax.Tree, node *syntax.Node, opts Options) (string, error) {
	if tree == nil || node == nil {
		return "", ErrInvalidNode
	}
	if node.StartByte < 0 || node.StartByte > node.EndByte || node.EndByte > len(tree.Source) {
		return "", fmt.Errorf("%w: span [%d,%d) outside source of %d bytes",
			ErrInvalidNode, node.StartByte, node.EndByte, len(tree.Source))
	}
	if node.HasError || node.Kind == syntax.KindError {
		return "", fmt.Errorf("%w: %s at line %d", ErrUnsafeNode, node.Type, node.Line())
	}

	target := node
	if !opts.RetainFunctionParens {
		target = unwrapFunctionParens(target)
	}

	var out string
	if opts.Compact {
		out = compact(tree.Source, target, opts.Comments)
	} else {
		out = expanded(tree.Source, target, opts)
	}

	if opts.RetainLines && target.Start.Row > 0 {
		out = strings.Repeat("\n", target.Start.Row) + out
	}
	return out, nil
}

// unwrapFunctionParens strips parentheses around a function expression,
// however deeply nested. Anything else is returned unchanged.
func unwrapFunctionParens(n *syntax.Node) *syntax.Node {
	cur := n
	for cur.Kind == syntax.KindParenthesized {
		var inner *syntax.Node
		for _, c := range cur.NamedChildren() {
			if c.Kind == syntax.KindComment {
				continue
			}
			if inner != nil {
				return n
			}
			inner = c
		}
		if inner == nil {
			return n
		}
		cur = inner
	}
	if cur.Kind != syntax.KindFunction {
		return n
	}
	return cur
}

// expanded copies the node's source, eliding comments when requested.
func expanded(src []byte, n *syntax.Node, opts Options) string {
	var b strings.Builder
	pos := n.StartByte
	if !opts.Comments {
		syntax.Walk(n, func(c *syntax.Node, _ []*syntax.Node) bool {
			if c.Kind == syntax.KindComment && c != n {
				b.Write(src[pos:c.StartByte])
				pos = c.EndByte
			}
			return true
		})
	}
	b.Write(src[pos:n.EndByte])
	out := b.String()

	if opts.Dedent && !hasMultilineLiteral(n) {
		out = dedent(out)
	}
	return out
}

// hasMultilineLiteral reports whether any string-like literal in the subtree
// spans lines. Reindenting such a body would change the literal's value.
func hasMultilineLiteral(n *syntax.Node) bool {
	found := false
	syntax.Walk(n, func(c *syntax.Node, _ []*syntax.Node) bool {
		switch c.Kind {
		case syntax.KindTemplateString, syntax.KindStringLiteral, syntax.KindRegex:
			if c.End.Row > c.Start.Row {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// dedent removes the whitespace prefix shared by every non-blank line after
// the first. The first line starts mid-line in the source and carries no
// indentation of its own.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}

	prefix := ""
	first := true
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
		if prefix == "" {
			return s
		}
	}
	if prefix == "" {
		return s
	}

	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return a[:i]
}
