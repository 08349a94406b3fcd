// Package ident canonicalizes document identifiers and free-text labels
// into comparison keys for fuzzy and alias matching.
package ident

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, removes whitespace, hyphens, en/em dashes and
// parentheses, then strips every remaining non-alphanumeric rune. The result
// is the comparison key used for reference resolution and completion
// filtering: "Green Function", "green-function" and "GREEN_FUNCTION" all
// normalize to "greenfunction".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case '-', '–', '—', '(', ')':
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
