package bundle

import (
	"strings"
	"unicode"
)

// Normalize drops every line of source that is empty or whitespace-only and
// joins the remaining lines with a single "\n". Kept lines are not trimmed.
func Normalize(source string) string {
	lines := strings.Split(source, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimFunc(line, isBlank) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// isBlank matches the whitespace JavaScript's String.prototype.trim removes.
// NEL (U+0085) is Unicode white space but not JavaScript white space.
func isBlank(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\ufeff'
}
