package quiz

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Decoder turns provider text into display text.
type Decoder func(raw string) string

// DecodeHTML unescapes HTML character references such as &quot; or &#039;.
// Unknown entities are left as they are.
func DecodeHTML(raw string) string {
	return html.UnescapeString(raw)
}

var upper = cases.Upper(language.Und)

// CapitalizeFirst upper-cases the first character of s and leaves the rest
// untouched. Special casings like "ß" -> "SS" are honoured.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(s[:size]) + s[size:]
}

// NormalizeName trims raw and capitalizes it. ok is false for blank input.
func NormalizeName(raw string) (name string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return CapitalizeFirst(trimmed), true
}
