package sanitize

import (
	"regexp"
	"strings"
)

const (
	maxEmailLocalLen  = 64
	maxEmailDomainLen = 255
)

var emailSanityPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SanitizeEmail trims, requires a single '@', bounds local/domain length,
// validates label lengths, applies a regex sanity check, and lowercases both
// sides (§4.2).
func SanitizeEmail(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "", false
	}
	local, domain := parts[0], parts[1]

	if local == "" || len(local) > maxEmailLocalLen {
		return "", false
	}
	if !isASCII(local) {
		return "", false
	}
	if domain == "" || len(domain) > maxEmailDomainLen {
		return "", false
	}

	for _, label := range strings.Split(domain, ".") {
		if len(label) == 0 || len(label) > 63 {
			return "", false
		}
	}

	lower := strings.ToLower(s)
	if !emailSanityPattern.MatchString(lower) {
		return "", false
	}

	return lower, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
