package shaper

import "github.com/caldera-ledger/txregistry/internal/regerrors"

// directionAliasKeys lists, in priority order, the keys a caller may use to
// supply the transaction direction. The first key present in the payload
// wins; later keys are ignored even if also present (§9 Design Notes).
var directionAliasKeys = []string{"direction", "transaction_kind", "transactionKind"}

var validDirections = map[string]bool{
	"purchase":   true,
	"refund":     true,
	"chargeback": true,
	"payout":     true,
	"adjustment": true,
}

// ShapeDirection looks up the direction under its alias keys in fixed order,
// trims and lowercases it, and validates it against the fixed enum (§4.3).
func ShapeDirection(payload map[string]any) (string, error) {
	var raw any
	for _, key := range directionAliasKeys {
		if v, ok := payload[key]; ok && v != nil {
			raw = v
			break
		}
	}
	if raw == nil {
		return "", regerrors.New(regerrors.ErrCodeInvalidDirection, "direction", "direction is required")
	}

	s, ok := raw.(string)
	if !ok {
		return "", regerrors.New(regerrors.ErrCodeInvalidDirection, "direction", "direction must be a string")
	}

	normalized := normalizeEnumToken(s)
	if !validDirections[normalized] {
		return "", regerrors.New(regerrors.ErrCodeInvalidDirection, "direction", "unrecognized direction: "+s)
	}

	return normalized, nil
}

// ShapeStatus trims and lowercases status. Status is free-form — any
// non-blank text normalizes successfully, there is no fixed enum. It errors
// on a non-string value, and on a missing/blank value when required is true
// (create); with required false a missing/blank value is simply absent
// (update, where status is left unchanged; query filters, where no status
// narrows the result) (§4.3).
func ShapeStatus(v any, required bool) (string, bool, error) {
	if v == nil {
		if required {
			return "", false, regerrors.New(regerrors.ErrCodeInvalidStatus, "status", "status is required")
		}
		return "", false, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", false, regerrors.New(regerrors.ErrCodeInvalidStatus, "status", "status must be a string")
	}

	normalized := normalizeEnumToken(s)
	if normalized == "" {
		if required {
			return "", false, regerrors.New(regerrors.ErrCodeInvalidStatus, "status", "status is required")
		}
		return "", false, nil
	}

	return normalized, true, nil
}

func normalizeEnumToken(s string) string {
	return trimAndLower(s)
}
