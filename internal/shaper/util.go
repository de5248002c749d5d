package shaper

import "strings"

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
