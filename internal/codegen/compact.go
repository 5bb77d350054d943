package codegen

import (
	"strings"

	"unbundle/internal/syntax"
)

// atomic kinds are emitted verbatim; their inner whitespace is significant.
func isAtomic(k syntax.Kind) bool {
	switch k {
	case syntax.KindStringLiteral, syntax.KindTemplateString, syntax.KindRegex, syntax.KindComment:
		return true
	}
	return false
}

// collectLeaves appends the tokens of n in source order.
func collectLeaves(n *syntax.Node, out []*syntax.Node) []*syntax.Node {
	if isAtomic(n.Kind) || n.IsLeaf() {
		if n.EndByte > n.StartByte {
			out = append(out, n)
		}
		return out
	}
	for _, c := range n.Children {
		out = collectLeaves(c, out)
	}
	return out
}

// compact re-emits the tokens of n with minimal separators. A newline from
// the source is kept where dropping it could change how automatic semicolon
// insertion reads the code, and after line comments.
func compact(src []byte, n *syntax.Node, comments bool) string {
	leaves := collectLeaves(n, nil)

	var b strings.Builder
	var prev *syntax.Node
	prevText := ""
	for _, leaf := range leaves {
		if leaf.Kind == syntax.KindComment && !comments {
			continue
		}
		text := string(src[leaf.StartByte:leaf.EndByte])
		if prev != nil {
			b.WriteString(separator(src, prev, prevText, leaf, text))
		}
		b.WriteString(text)
		prev = leaf
		prevText = text
	}
	return b.String()
}

func separator(src []byte, prev *syntax.Node, prevText string, next *syntax.Node, nextText string) string {
	if prev.Kind == syntax.KindComment && strings.HasPrefix(prevText, "//") {
		return "\n"
	}
	gap := ""
	if prev.EndByte <= next.StartByte {
		gap = string(src[prev.EndByte:next.StartByte])
	}
	if strings.Contains(gap, "\n") && asiSensitive(prevText, nextText) {
		return "\n"
	}
	last := prevText[len(prevText)-1]
	first := nextText[0]
	if isWordByte(last) && isWordByte(first) {
		return " "
	}
	// "a + +b", "a - -b", "a / /re/" must not fuse into a different token.
	if last == first && strings.IndexByte("+-/", last) >= 0 {
		return " "
	}
	if fuses(prev, prevText, nextText) {
		return " "
	}
	if next.Kind == syntax.KindComment || prev.Kind == syntax.KindComment {
		return " "
	}
	return ""
}

// fuses reports pairs that would lex differently when written back to back:
// "1 .x" as a malformed number, "/re/ in" as regex flags, and the HTML-like
// comment openers "<!--" and "-->".
func fuses(prev *syntax.Node, prevText, nextText string) bool {
	first := nextText[0]
	switch {
	case prev.Kind == syntax.KindNumberLiteral && first == '.':
		return true
	case prev.Kind == syntax.KindRegex && isWordByte(first):
		return true
	case strings.HasSuffix(prevText, "<") && first == '!':
		return true
	case strings.HasSuffix(prevText, "--") && first == '>':
		return true
	}
	return false
}

func asiSensitive(prevText, nextText string) bool {
	switch prevText {
	case ";", ",", "{", "(", "[", ":", "=>":
		return false
	}
	switch nextText {
	case "}", ")", "]", ";", ",", ".", ":":
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
