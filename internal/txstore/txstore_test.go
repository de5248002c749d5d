package txstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier_RejectsBad(t *testing.T) {
	_, err := QuoteIdentifier("bad; drop")
	assert.Error(t, err)
}

func TestQuoteIdentifier_AllowsSchemaQualified(t *testing.T) {
	quoted, err := QuoteIdentifier("public.transactions")
	require.NoError(t, err)
	assert.Equal(t, `"public"."transactions"`, quoted)
}

func TestRebasePlaceholders(t *testing.T) {
	out := RebasePlaceholders("customer_uid = $1 AND status = $2", 3)
	assert.Equal(t, "customer_uid = $4 AND status = $5", out)
}

func TestCheckPlaceholderCount(t *testing.T) {
	assert.NoError(t, CheckPlaceholderCount("status = $1", []any{"pending"}))
	assert.Error(t, CheckPlaceholderCount("status = $2", []any{"pending"}))
}

func TestValidateFreeformWhere(t *testing.T) {
	assert.NoError(t, ValidateFreeformWhere("transaction_id = $1"))
	assert.Error(t, ValidateFreeformWhere("transaction_id = 'x'"))
	assert.Error(t, ValidateFreeformWhere("1=1"))
	assert.Error(t, ValidateFreeformWhere("transaction_id = $1; DROP TABLE transactions"))
}

func TestMemoryGateway_InsertAndGet(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	inserted, err := g.Insert(ctx, TransactionsSchema, map[string]any{
		"transaction_id": "tx-1",
		"customer_uid":   "cust-1",
		"status":         "pending",
		"is_deleted":     false,
		"created_at":     "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", inserted["transaction_id"])

	row, ok, err := g.GetRow(ctx, "SELECT * FROM transactions WHERE is_deleted = false AND transaction_id = $1", "tx-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cust-1", row["customer_uid"])
}

func TestMemoryGateway_DuplicateInsertRejected(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	row := map[string]any{"transaction_id": "tx-1", "is_deleted": false, "created_at": "2026-01-01T00:00:00Z"}

	_, err := g.Insert(ctx, TransactionsSchema, row)
	require.NoError(t, err)

	_, err = g.Insert(ctx, TransactionsSchema, row)
	assert.Error(t, err)
}

func TestMemoryGateway_Update(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	_, err := g.Insert(ctx, TransactionsSchema, map[string]any{
		"transaction_id": "tx-1", "status": "pending", "is_deleted": false, "created_at": "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	updated, err := g.Update(ctx, TransactionsSchema,
		map[string]any{"status": "settled"},
		"transaction_id = $1", []any{"tx-1"})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "settled", updated[0]["status"])
}

func TestMemoryGateway_CountQuery(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		id := "tx-" + string(rune('a'+i))
		_, err := g.Insert(ctx, TransactionsSchema, map[string]any{
			"transaction_id": id, "customer_uid": "cust-1", "is_deleted": false, "created_at": "2026-01-01T00:00:00Z",
		})
		require.NoError(t, err)
	}

	rows, err := g.Query(ctx, "SELECT COUNT(*) AS total FROM transactions WHERE is_deleted = false AND customer_uid = $1", "cust-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0]["total"])
}

func TestMemoryGateway_RunInTx(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	_, err := g.Insert(ctx, TransactionsSchema, map[string]any{
		"transaction_id": "tx-1", "is_deleted": false, "created_at": "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	err = g.RunInTx(ctx, func(ctx context.Context, q querier) error {
		row, ok, err := q.GetRow(ctx, "SELECT * FROM transactions WHERE transaction_id = $1", "tx-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "tx-1", row["transaction_id"])
		return nil
	})
	assert.NoError(t, err)
}

func TestClassifyError_NonPQError(t *testing.T) {
	assert.Equal(t, FailureConnection, ClassifyError(assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
