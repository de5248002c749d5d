package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeText strips HTML tags, zero-width/format characters, and control
// characters (preserving \n and \t), NFC-normalizes via golang.org/x/text,
// and optionally HTML-escapes the result. An empty result maps to "" so the
// caller's presence check treats it as absent (§4.2).
func SanitizeText(v any, escapeHTML bool) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}

	s = htmlTagPattern.ReplaceAllString(s, "")
	s = stripControlAndFormatChars(s)
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)

	if escapeHTML {
		s = html.EscapeString(s)
	}

	return s
}

// stripControlAndFormatChars removes C0/C1 control characters (except \n and
// \t) and Unicode zero-width/format characters (category Cf, e.g. ZWSP,
// ZWJ, BOM) that can be used to smuggle invisible payload into free text.
func stripControlAndFormatChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
