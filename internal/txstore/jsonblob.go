package txstore

import (
	"github.com/goccy/go-json"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// SerializeJSON marshals v with goccy/go-json for a jsonb driver parameter.
// Per §4.1, this is single-layer: the gateway does not recurse into
// nested structures, it only turns the top-level value into bytes for the
// driver — callers (internal/shaper) have already scrubbed and validated
// the nested shape.
func SerializeJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", regerrors.Wrap(regerrors.ErrCodeInvalidValue, "json_serialize", err)
	}
	return string(raw), nil
}

// DeserializeJSON unmarshals a jsonb column's text representation back into
// a Go value via goccy/go-json.
func DeserializeJSON(raw string, out any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return regerrors.Wrap(regerrors.ErrCodeInvalidValue, "json_deserialize", err)
	}
	return nil
}
