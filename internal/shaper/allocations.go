package shaper

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
)

const maxAllocationsBytes = 8192

// ShapeOwnerAllocations validates owner_allocations: a list of
// {owner_uuid, amount_cents} pairs, each owner_uuid non-empty text and each
// amount_cents an integer-coercible value (§4.3).
func ShapeOwnerAllocations(v any) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.([]any); !ok {
		return nil, regerrors.New(regerrors.ErrCodeInvalidAllocation, "owner_allocations", "owner_allocations must be an array")
	}

	items := sanitize.SanitizeArray(v)
	out := make([]map[string]any, 0, len(items))

	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, regerrors.New(regerrors.ErrCodeInvalidAllocation, "owner_allocations", fmt.Sprintf("entry %d is not an object", i))
		}

		ownerUUID := sanitize.SanitizeText(entry["owner_uuid"], false)
		if ownerUUID == "" {
			return nil, regerrors.New(regerrors.ErrCodeInvalidAllocation, "owner_allocations", fmt.Sprintf("entry %d missing owner_uuid", i))
		}

		amountCents, ok := sanitize.SanitizeInt(entry["amount_cents"])
		if !ok {
			return nil, regerrors.New(regerrors.ErrCodeInvalidAllocation, "owner_allocations", fmt.Sprintf("entry %d has invalid amount_cents", i))
		}

		out = append(out, map[string]any{
			"owner_uuid":   ownerUUID,
			"amount_cents": amountCents,
		})
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, regerrors.Wrap(regerrors.ErrCodeBlobTooLarge, "owner_allocations", err)
	}
	if len(raw) > maxAllocationsBytes {
		return nil, regerrors.New(regerrors.ErrCodeBlobTooLarge, "owner_allocations", "serialized owner_allocations exceeds 8192 bytes")
	}

	return out, nil
}
