package shaper

import (
	"github.com/goccy/go-json"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
)

const (
	maxProductsBytes = 16384
	maxOwnersBytes   = 4096
)

// ShapeProducts validates the products field: an arbitrary list of
// caller-shaped product entries, capped at 16384 serialized bytes (§4.3).
func ShapeProducts(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}

	items := sanitize.SanitizeArray(v)

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, regerrors.Wrap(regerrors.ErrCodeBlobTooLarge, "products", err)
	}
	if len(raw) > maxProductsBytes {
		return nil, regerrors.New(regerrors.ErrCodeBlobTooLarge, "products", "serialized products exceeds 16384 bytes")
	}

	return items, nil
}

// ShapeOwners validates the owners field: a list of owner identifiers,
// each sanitized as plain text and capped at 4096 serialized bytes (§4.3).
func ShapeOwners(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}

	items := sanitize.SanitizeArray(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		text := sanitize.SanitizeText(item, false)
		if text == "" {
			continue
		}
		out = append(out, text)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, regerrors.Wrap(regerrors.ErrCodeBlobTooLarge, "owners", err)
	}
	if len(raw) > maxOwnersBytes {
		return nil, regerrors.New(regerrors.ErrCodeBlobTooLarge, "owners", "serialized owners exceeds 4096 bytes")
	}

	return out, nil
}
