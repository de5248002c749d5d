package sanitize

import (
	"net/url"
	"strings"
	"unicode"
)

const maxURLLength = 2048

// SanitizeURL requires http:/https:, <= 2048 chars, an ASCII host, no
// trailing dot, no control chars, and strips embedded credentials (§4.2).
func SanitizeURL(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxURLLength {
		return "", false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", false
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := u.Hostname()
	if host == "" {
		return "", false
	}
	if strings.HasSuffix(host, ".") {
		return "", false
	}
	for _, r := range host {
		if r > unicode.MaxASCII {
			return "", false
		}
	}

	u.User = nil
	return u.String(), true
}
