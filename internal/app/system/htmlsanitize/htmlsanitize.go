// Package htmlsanitize cleans user-entered text before it is stored and
// prepares stored plain text for display.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes every HTML element from s and returns plain text.
// Entities are decoded so the stored value is not double-escaped on render.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strictPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// PlainTextToHTML escapes s and turns line breaks into <br>, for multi-line
// descriptions and chat messages.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}
