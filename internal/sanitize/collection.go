package sanitize

// SanitizeArray coerces a singleton value to a one-element slice, then
// drops entries considered absent by the same hasValue predicate used for
// top-level fields: nil, "", empty slices, and empty maps are dropped; 0 and
// false are kept (§4.2).
func SanitizeArray(v any) []any {
	var items []any

	switch t := v.(type) {
	case []any:
		items = t
	case nil:
		return []any{}
	default:
		items = []any{t}
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		if hasValue(item) {
			out = append(out, item)
		}
	}
	return out
}

// reservedObjectKeys mirrors the original dynamic runtime's prototype-
// pollution guard (§4.2, §9). Go maps have no prototype chain, so this is
// defense-in-depth parity rather than a real vulnerability, but it keeps the
// sanitizer's behavior identical for payloads round-tripped from JSON that
// may still carry these keys.
var reservedObjectKeys = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
}

// SanitizeObject shallow-copies a plain map into a fresh map[string]any,
// dropping any reserved key (§4.2). Non-map input sanitizes to nil.
func SanitizeObject(v any) map[string]any {
	src, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]any, len(src))
	for k, val := range src {
		if reservedObjectKeys[k] {
			continue
		}
		out[k] = val
	}
	return out
}
