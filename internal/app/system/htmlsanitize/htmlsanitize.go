// Package htmlsanitize detects HTML markup in user-supplied text.
//
// Text is never rewritten here. Callers store what the user sent and use
// IsPlainText to refuse input that carries tags a client could render.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// IsPlainText reports whether s holds no HTML tags. A '<' with no later '>'
// cannot open a tag ("if x<y then"); otherwise s is plain when the strict
// policy keeps every character of it.
func IsPlainText(s string) bool {
	i := strings.IndexByte(s, '<')
	if i < 0 || strings.IndexByte(s[i:], '>') < 0 {
		return true
	}
	return html.UnescapeString(strict().Sanitize(s)) == s
}
