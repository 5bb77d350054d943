package bundle

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"unbundle/internal/syntax"
)

// NameExpression is the raw module name taken from an entry's key. Literal
// is true when the key was a string literal and Value holds its decoded
// value; otherwise Value is the key's source text (an identifier name, or
// the text of a numeric or computed key).
type NameExpression struct {
	Value   string
	Literal bool
}

func (n NameExpression) String() string {
	if n.Literal {
		return strconv.Quote(n.Value)
	}
	return n.Value
}

// CandidateEntry is one key/value pair recognized as a module definition.
// For a shorthand property the key and value are the same identifier, so
// Body and Pair both point at it.
type CandidateEntry struct {
	Name NameExpression
	Body *syntax.Node // the pair's value, not validated
	Pair *syntax.Node
}

// IsModuleEntry reports whether n is a key/value pair (or shorthand
// property) inside an object literal that is itself an element of an array
// literal. Parentheses around the object are looked through, so
// [({a: f})] matches like [{a: f}]. ancestors is the walk's ancestor stack
// with the parent last.
func IsModuleEntry(n *syntax.Node, ancestors []*syntax.Node) bool {
	if n.Kind != syntax.KindPair && n.Kind != syntax.KindShorthandProperty {
		return false
	}
	parent := syntax.Ancestor(ancestors, 1)
	if parent == nil || parent.Kind != syntax.KindObjectLiteral {
		return false
	}
	up := 2
	for {
		container := syntax.Ancestor(ancestors, up)
		if container == nil {
			return false
		}
		if container.Kind != syntax.KindParenthesized {
			return container.Kind == syntax.KindArrayLiteral
		}
		up++
	}
}

// Recognize yields the module entries of tree in document order. Each call
// performs one fresh traversal; the sequence stops early if the consumer
// does.
func Recognize(tree *syntax.Tree) iter.Seq[CandidateEntry] {
	return func(yield func(CandidateEntry) bool) {
		if tree == nil {
			return
		}
		syntax.Walk(tree.Root, func(n *syntax.Node, ancestors []*syntax.Node) bool {
			if !IsModuleEntry(n, ancestors) {
				return true
			}
			if n.Kind == syntax.KindShorthandProperty {
				return yield(CandidateEntry{
					Name: NameExpression{Value: tree.Text(n)},
					Body: n,
					Pair: n,
				})
			}
			key := n.ChildByField(syntax.FieldKey)
			value := n.ChildByField(syntax.FieldValue)
			if key == nil || value == nil {
				return true
			}
			return yield(CandidateEntry{
				Name: keyName(tree, key),
				Body: value,
				Pair: n,
			})
		})
	}
}

func keyName(tree *syntax.Tree, key *syntax.Node) NameExpression {
	switch key.Kind {
	case syntax.KindStringLiteral:
		return NameExpression{Value: stringValue(tree, key), Literal: true}
	case syntax.KindComputedKey:
		for _, c := range key.NamedChildren() {
			if c.Kind != syntax.KindComment {
				return NameExpression{Value: tree.Text(c)}
			}
		}
	}
	return NameExpression{Value: tree.Text(key)}
}

// stringValue returns the decoded value of a string literal node.
func stringValue(tree *syntax.Tree, n *syntax.Node) string {
	var b strings.Builder
	parts := n.NamedChildren()
	for i := 0; i < len(parts); i++ {
		c := parts[i]
		text := tree.Text(c)
		if c.Type != "escape_sequence" {
			b.WriteString(text)
			continue
		}
		if hi, ok := surrogate(text); ok && utf16.IsSurrogate(hi) && i+1 < len(parts) {
			if lo, ok := surrogate(tree.Text(parts[i+1])); ok {
				if r := utf16.DecodeRune(hi, lo); r != utf8.RuneError {
					b.WriteRune(r)
					i++
					continue
				}
			}
		}
		b.WriteString(decodeEscape(text))
	}
	return b.String()
}

// surrogate parses a four-digit \uXXXX escape that encodes a UTF-16
// surrogate half.
func surrogate(seq string) (rune, bool) {
	if len(seq) != 6 || !strings.HasPrefix(seq, `\u`) {
		return 0, false
	}
	v, err := strconv.ParseUint(seq[2:], 16, 16)
	if err != nil || !utf16.IsSurrogate(rune(v)) {
		return 0, false
	}
	return rune(v), true
}

// decodeEscape decodes a single JavaScript escape sequence such as \n,
// \x41, \u0041 or \u{1F600}. Unknown escapes decode to the escaped
// character itself; a line continuation decodes to nothing.
func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case '\n', '\r':
		return ""
	case 'x':
		if v, err := strconv.ParseUint(body[1:], 16, 8); err == nil && len(body) == 3 {
			return string(rune(v))
		}
	case 'u':
		hex := body[1:]
		if strings.HasPrefix(hex, "{") && strings.HasSuffix(hex, "}") {
			hex = hex[1 : len(hex)-1]
		}
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			if !utf8.ValidRune(rune(v)) {
				return string(utf8.RuneError)
			}
			return string(rune(v))
		}
	}
	// Line separators and other escaped characters stand for themselves.
	return body
}
