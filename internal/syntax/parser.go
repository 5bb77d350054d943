package syntax

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"unbundle/internal/logging"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

var (
	// ErrSyntax is wrapped by every SyntaxError.
	ErrSyntax = errors.New("syntax error")

	// ErrFileTooLarge is returned when the input exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent is returned when the input is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")
)

// SyntaxError locates the first error the grammar reported.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Path, e.Line, e.Column, e.Near)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ParserOptions configures Parser behavior.
type ParserOptions struct {
	// MaxFileSize is the maximum input size in bytes. Zero disables the check.
	MaxFileSize int
}

// DefaultParserOptions returns the default options.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MaxFileSize: 64 * 1024 * 1024,
	}
}

// ParserOption is a functional option for configuring Parser.
type ParserOption func(*ParserOptions)

// WithMaxFileSize sets the maximum input size.
func WithMaxFileSize(size int) ParserOption {
	return func(o *ParserOptions) {
		o.MaxFileSize = size
	}
}

// Parser turns JavaScript source into a Tree using tree-sitter.
//
// Each Parse call creates its own tree-sitter parser, so a Parser may be
// shared.
type Parser struct {
	options ParserOptions
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	options := DefaultParserOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// Parse parses content as a JavaScript module. Import and export
// declarations are accepted anywhere. Any error node in the result makes the
// whole parse fail with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if p.options.MaxFileSize > 0 && len(content) > p.options.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(content), p.options.MaxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	start := time.Now()
	logging.ParseDebug("parsing %s (%d bytes)", filepath.Base(path), len(content))

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tsTree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.HasError() {
		serr := locateError(root, content, path)
		logging.ParseDebug("%v", serr)
		return nil, serr
	}

	tree := &Tree{
		Path:   path,
		Source: content,
		Root:   convert(root, ""),
	}
	logging.Parse("parsed %s in %v", filepath.Base(path), time.Since(start))
	return tree, nil
}

// fieldsByType lists the fields tracked per grammar type.
var fieldsByType = map[string][]string{
	jsNodePair: {FieldKey, FieldValue},
}

func convert(n *sitter.Node, field string) *Node {
	out := &Node{
		Type:      n.Type(),
		Field:     field,
		Named:     n.IsNamed(),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		Start:     Point{Row: int(n.StartPoint().Row), Column: int(n.StartPoint().Column)},
		End:       Point{Row: int(n.EndPoint().Row), Column: int(n.EndPoint().Column)},
		HasError:  n.HasError(),
	}
	out.Kind = KindOf(out.Type, out.Named)

	count := int(n.ChildCount())
	if count == 0 {
		return out
	}

	var fielded []*sitter.Node
	var names []string
	for _, name := range fieldsByType[out.Type] {
		if c := n.ChildByFieldName(name); c != nil {
			fielded = append(fielded, c)
			names = append(names, name)
		}
	}

	out.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		childField := ""
		for j, f := range fielded {
			if sameNode(f, child) {
				childField = names[j]
				break
			}
		}
		out.Children = append(out.Children, convert(child, childField))
	}
	return out
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// locateError descends along the first erroneous child until it reaches the
// innermost node that carries the error.
func locateError(root *sitter.Node, content []byte, path string) *SyntaxError {
	n := root
	for n.Type() != jsNodeError {
		var next *sitter.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == jsNodeError || c.HasError() {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		n = next
	}

	near := n.Content(content)
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{
		Path:   path,
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column) + 1,
		Near:   near,
	}
}
