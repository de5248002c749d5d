// Package shaper implements the Payload Shaper (SPEC_FULL.md §4.3): the
// per-field sanitizers for meta, owner_allocations, products, and owners,
// plus direction/status normalization. Grounded on the teacher's JSON-blob
// marshal/size-check pattern used throughout internal/storage/postgres_store.go
// (SaveCartQuote, SaveRefundQuote) but generalized into a reusable recursive
// scrubber since the registry's meta payload is caller-shaped, not a fixed
// struct.
package shaper

import (
	"regexp"
	"sort"

	"github.com/goccy/go-json"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
)

const maxMetaBytes = 4096

var metaKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ShapeMeta validates and serializes the meta field. A nil/absent input
// shapes to (nil, nil): meta is optional and explicit-unset clears it.
func ShapeMeta(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}

	obj := sanitize.SanitizeObject(v)
	if obj == nil {
		return nil, nil
	}

	shaped, err := shapeMetaEntries(obj, "")
	if err != nil {
		return nil, err
	}

	if err := checkMetaSize(shaped); err != nil {
		return nil, err
	}

	return shaped, nil
}

// shapeMetaEntries recursively validates key shape and scrubs nested
// arrays/maps, matching §4.3's "key sanitized then matched against
// ^[A-Za-z0-9_-]+$" / "nested maps recurse" rules.
func shapeMetaEntries(obj map[string]any, pathPrefix string) (map[string]any, error) {
	out := make(map[string]any, len(obj))

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cleanKey := sanitize.SanitizeText(key, false)
		path := cleanKey
		if pathPrefix != "" {
			path = pathPrefix + "." + cleanKey
		}
		if !metaKeyPattern.MatchString(cleanKey) {
			return nil, regerrors.New(regerrors.ErrCodeInvalidMetaKey, "meta", "key does not match ^[A-Za-z0-9_-]+$: "+path)
		}

		val, err := shapeMetaValue(obj[key], path)
		if err != nil {
			return nil, err
		}
		out[cleanKey] = val
	}

	return out, nil
}

func shapeMetaValue(v any, path string) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64, int, int64:
		return t, nil
	case []any:
		items := sanitize.SanitizeArray(t)
		out := make([]any, 0, len(items))
		for _, item := range items {
			shaped, err := shapeMetaValue(item, path)
			if err != nil {
				return nil, err
			}
			out = append(out, shaped)
		}
		return out, nil
	case map[string]any:
		nested := sanitize.SanitizeObject(t)
		return shapeMetaEntries(nested, path)
	default:
		// Unknown scalar-ish types (e.g. json.Number) pass through as-is;
		// the final JSON marshal step will reject anything truly invalid.
		return t, nil
	}
}

func checkMetaSize(m map[string]any) error {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return regerrors.Wrap(regerrors.ErrCodeBlobTooLarge, "meta", err)
	}
	if len(raw) > maxMetaBytes {
		return regerrors.New(regerrors.ErrCodeBlobTooLarge, "meta", "serialized meta exceeds 4096 bytes")
	}
	return nil
}
