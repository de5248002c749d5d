package shaper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeDirection_AliasOrder(t *testing.T) {
	// direction wins over transaction_kind when both present.
	dir, err := ShapeDirection(map[string]any{
		"direction":        "Purchase",
		"transaction_kind": "refund",
	})
	require.NoError(t, err)
	assert.Equal(t, "purchase", dir)
}

func TestShapeDirection_FallsBackToAlias(t *testing.T) {
	dir, err := ShapeDirection(map[string]any{
		"transactionKind": " REFUND ",
	})
	require.NoError(t, err)
	assert.Equal(t, "refund", dir)
}

func TestShapeDirection_Invalid(t *testing.T) {
	_, err := ShapeDirection(map[string]any{"direction": "teleport"})
	assert.Error(t, err)
}

func TestShapeDirection_Missing(t *testing.T) {
	_, err := ShapeDirection(map[string]any{})
	assert.Error(t, err)
}

func TestShapeStatus_RequiredMissing(t *testing.T) {
	_, present, err := ShapeStatus(nil, true)
	assert.False(t, present)
	assert.Error(t, err)
}

func TestShapeStatus_OptionalMissing(t *testing.T) {
	_, present, err := ShapeStatus(nil, false)
	assert.False(t, present)
	assert.NoError(t, err)
}

func TestShapeStatus_Normalizes(t *testing.T) {
	status, present, err := ShapeStatus("  Settled ", true)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "settled", status)
}

func TestShapeMeta_RejectsBadKey(t *testing.T) {
	_, err := ShapeMeta(map[string]any{"bad key!": "x"})
	assert.Error(t, err)
}

func TestShapeMeta_RecursesNested(t *testing.T) {
	shaped, err := ShapeMeta(map[string]any{
		"top": map[string]any{"nested_key": "value"},
	})
	require.NoError(t, err)
	nested, ok := shaped["top"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", nested["nested_key"])
}

func TestShapeMeta_TooLarge(t *testing.T) {
	big := map[string]any{"blob": strings.Repeat("a", maxMetaBytes+1)}
	_, err := ShapeMeta(big)
	assert.Error(t, err)
}

func TestShapeOwnerAllocations_Valid(t *testing.T) {
	allocations, err := ShapeOwnerAllocations([]any{
		map[string]any{"owner_uuid": "owner-1", "amount_cents": 1500},
	})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "owner-1", allocations[0]["owner_uuid"])
	assert.Equal(t, int64(1500), allocations[0]["amount_cents"])
}

func TestShapeOwnerAllocations_MissingOwnerUUID(t *testing.T) {
	_, err := ShapeOwnerAllocations([]any{
		map[string]any{"amount_cents": 100},
	})
	assert.Error(t, err)
}

func TestShapeOwnerAllocations_BadAmount(t *testing.T) {
	_, err := ShapeOwnerAllocations([]any{
		map[string]any{"owner_uuid": "owner-1", "amount_cents": "not-a-number"},
	})
	assert.Error(t, err)
}

func TestShapeProducts_Caps(t *testing.T) {
	items := make([]any, 0, 2000)
	for i := 0; i < 2000; i++ {
		items = append(items, map[string]any{"sku": strings.Repeat("x", 20)})
	}
	_, err := ShapeProducts(items)
	assert.Error(t, err)
}

func TestShapeOwners_DropsBlank(t *testing.T) {
	owners, err := ShapeOwners([]any{"alice", "", "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)
}

func TestShape_ComposesAllFields(t *testing.T) {
	payload, err := Shape(map[string]any{
		"direction": "purchase",
		"status":    "pending",
		"meta":      map[string]any{"source": "web"},
		"owner_allocations": []any{
			map[string]any{"owner_uuid": "o1", "amount_cents": 500},
		},
		"products": []any{"sku-1"},
		"owners":   []any{"alice"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "purchase", payload.Direction)
	assert.Equal(t, "pending", payload.Status)
	assert.Equal(t, "web", payload.Meta["source"])
	assert.Len(t, payload.OwnerAllocations, 1)
	assert.Len(t, payload.Products, 1)
	assert.Equal(t, []string{"alice"}, payload.Owners)
}
