// Package normalize cleans submitted form values before they are validated,
// stored or mailed.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an address. Stored and compared addresses
// always go through it.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a single-line value and collapses inner runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone is Name for phone numbers; the digits and punctuation are kept as
// typed.
func Phone(s string) string {
	return Name(s)
}

// Option normalizes a select value to its lowercase option key.
func Option(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Message normalizes free text to LF line endings, drops control
// characters other than newline and tab, and trims the ends. Inner
// spacing is kept.
func Message(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Search trims a search box query and collapses inner whitespace.
func Search(s string) string {
	return Name(s)
}
