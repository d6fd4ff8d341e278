package game

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNameRunes = 24
	maxChatRunes = 400
	defaultName  = "anon"
)

var (
	namePolicy = bluemonday.StrictPolicy()
	chatPolicy = bluemonday.UGCPolicy()
)

// sanitizeName caps the raw name, strips markup and returns plain text.
func sanitizeName(name string) string {
	if out := clean(namePolicy, name, maxNameRunes); out != "" {
		return out
	}
	return defaultName
}

// sanitizeChat caps the raw line, drops unsafe markup and returns plain
// text. The result may be empty.
func sanitizeChat(text string) string {
	return clean(chatPolicy, text, maxChatRunes)
}

// clean applies the cap before the policy so escaping never eats into it.
// Policy output is unescaped since the wire carries JSON, not HTML.
func clean(p *bluemonday.Policy, s string, max int) string {
	s = truncate(strings.TrimSpace(s), max)
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
