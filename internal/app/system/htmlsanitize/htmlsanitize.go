// Package htmlsanitize turns visitor-supplied text into plain text before it
// is placed into outgoing emails or echoed back into pages.
// It uses bluemonday's strict policy, which removes every element.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText strips all markup from s. Script and style bodies are dropped
// with their tags; entities are decoded so the result reads as typed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(s)))
}

// PlainTextMap applies PlainText to every value of m, returning a new map.
func PlainTextMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = PlainText(v)
	}
	return out
}

// IsPlainText reports whether content has no markup worth stripping.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid tags need both characters
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PlainTextToHTML escapes text and converts newlines to <br> tags.
func PlainTextToHTML(text string) template.HTML {
	if text == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}
