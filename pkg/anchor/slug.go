// Package anchor generates GitHub-style heading anchors.
//
// The same routine backs outline entries, anchor lookups, and the heading ids
// emitted by the HTML renderer, so a link produced by one side always resolves
// on the other.
package anchor

import (
	"strings"
	"unicode"
)

// Slug converts heading text into a GitHub-Flavored-Markdown anchor id.
//
// The text is trimmed and lower-cased. Letters, digits, marks, '_' and '-'
// are kept, every run of whitespace becomes a single '-', and all other runes
// are dropped. Leading and trailing hyphens are removed. Duplicate headings
// produce duplicate ids; there is no uniqueness counter.
func Slug(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(text))
	inSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				sb.WriteByte('-')
				inSpace = true
			}
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			sb.WriteRune(unicode.ToLower(r))
		case r == '-', r == '_':
			sb.WriteRune(r)
		}
		inSpace = false
	}

	return strings.Trim(sb.String(), "-")
}
