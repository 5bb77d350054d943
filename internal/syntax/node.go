// Package syntax holds the generalized syntax tree the extractor works on.
//
// A Tree is built once from the tree-sitter JavaScript grammar and is never
// mutated afterwards. Nodes are a tagged union over Kind; the grammar type
// name is kept alongside so callers that need finer distinctions can still
// make them.
package syntax

import "fmt"

// Kind classifies a node for structural matching.
type Kind int

const (
	KindOther Kind = iota
	KindProgram
	KindArrayLiteral
	KindObjectLiteral
	KindPair
	KindShorthandProperty
	KindStringLiteral
	KindIdentifier
	KindNumberLiteral
	KindComputedKey
	KindFunction
	KindParenthesized
	KindComment
	KindTemplateString
	KindRegex
	KindError
	KindToken // anonymous grammar token: punctuation, keywords, operators
)

var kindNames = map[Kind]string{
	KindOther:             "other",
	KindProgram:           "program",
	KindArrayLiteral:      "array_literal",
	KindObjectLiteral:     "object_literal",
	KindPair:              "pair",
	KindShorthandProperty: "shorthand_property",
	KindStringLiteral:     "string_literal",
	KindIdentifier:        "identifier",
	KindNumberLiteral:     "number_literal",
	KindComputedKey:       "computed_key",
	KindFunction:          "function",
	KindParenthesized:     "parenthesized",
	KindComment:           "comment",
	KindTemplateString:    "template_string",
	KindRegex:             "regex",
	KindError:             "error",
	KindToken:             "token",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Grammar type names of the tree-sitter JavaScript grammar that map to a Kind.
// Function expressions are "function" in older grammar releases and
// "function_expression" in newer ones; both are accepted.
const (
	jsNodeProgram            = "program"
	jsNodeArray              = "array"
	jsNodeObject             = "object"
	jsNodePair               = "pair"
	jsNodeShorthandProperty  = "shorthand_property_identifier"
	jsNodeString             = "string"
	jsNodeStringFragment     = "string_fragment"
	jsNodeEscapeSequence     = "escape_sequence"
	jsNodeIdentifier         = "identifier"
	jsNodePropertyIdentifier = "property_identifier"
	jsNodeNumber             = "number"
	jsNodeComputedProperty   = "computed_property_name"
	jsNodeFunction           = "function"
	jsNodeFunctionExpression = "function_expression"
	jsNodeArrowFunction      = "arrow_function"
	jsNodeGeneratorFunction  = "generator_function"
	jsNodeParenthesized      = "parenthesized_expression"
	jsNodeComment            = "comment"
	jsNodeTemplateString     = "template_string"
	jsNodeRegex              = "regex"
	jsNodeError              = "ERROR"
)

// Field names recorded on children. Only the fields the extractor reads are
// tracked.
const (
	FieldKey   = "key"
	FieldValue = "value"
)

// KindOf maps a grammar type name to a Kind. Anonymous nodes are tokens
// regardless of their type name.
func KindOf(nodeType string, named bool) Kind {
	if nodeType == jsNodeError {
		return KindError
	}
	if !named {
		return KindToken
	}
	switch nodeType {
	case jsNodeProgram:
		return KindProgram
	case jsNodeArray:
		return KindArrayLiteral
	case jsNodeObject:
		return KindObjectLiteral
	case jsNodePair:
		return KindPair
	case jsNodeShorthandProperty:
		return KindShorthandProperty
	case jsNodeString:
		return KindStringLiteral
	case jsNodeIdentifier, jsNodePropertyIdentifier:
		return KindIdentifier
	case jsNodeNumber:
		return KindNumberLiteral
	case jsNodeComputedProperty:
		return KindComputedKey
	case jsNodeFunction, jsNodeFunctionExpression, jsNodeArrowFunction, jsNodeGeneratorFunction:
		return KindFunction
	case jsNodeParenthesized:
		return KindParenthesized
	case jsNodeComment:
		return KindComment
	case jsNodeTemplateString:
		return KindTemplateString
	case jsNodeRegex:
		return KindRegex
	default:
		return KindOther
	}
}

// Point is a zero-based row/column position.
type Point struct {
	Row    int
	Column int
}

// Node is one node of the generalized tree.
type Node struct {
	Kind  Kind
	Type  string // grammar type name
	Field string // field name within the parent, when tracked
	Named bool

	StartByte int
	EndByte   int
	Start     Point
	End       Point

	// HasError is set when the node or any descendant is an error or
	// missing node.
	HasError bool

	Children []*Node
}

// ChildByField returns the first child recorded under the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// NamedChildren returns the named children, skipping tokens.
func (n *Node) NamedChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Line returns the one-based line the node starts on.
func (n *Node) Line() int {
	return n.Start.Row + 1
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)@%d:%d", n.Kind, n.Type, n.Start.Row+1, n.Start.Column+1)
}

// Tree is a parsed source file.
type Tree struct {
	Path   string
	Source []byte
	Root   *Node
}

// Text returns the source text spanned by n. Out of range spans yield "".
func (t *Tree) Text(n *Node) string {
	if n == nil || n.StartByte < 0 || n.EndByte > len(t.Source) || n.StartByte > n.EndByte {
		return ""
	}
	return string(t.Source[n.StartByte:n.EndByte])
}
