package bundle

import "strings"

// reservedChars are the characters that are not allowed in a file name on at
// least one common filesystem.
const reservedChars = `/\:*?"<>|`

// Sanitize replaces every reserved filename character in name with '_'. The
// substitution is one rune for one rune, so the result has the same length
// as the input and Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return '_'
		}
		return r
	}, name)
}
