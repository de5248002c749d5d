package txregistry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ledger/txregistry/internal/audit"
	"github.com/caldera-ledger/txregistry/internal/errreport"
	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/txregistry"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

func newTestRegistry(t *testing.T) (*txregistry.Registry, *audit.MemorySink) {
	t.Helper()
	gateway := txstore.NewMemoryGateway()
	sink := audit.NewMemorySink()
	emitter := audit.New(zerolog.Nop())
	emitter.Register(sink)
	reporter := errreport.New(zerolog.Nop())
	reg := txregistry.New(gateway, emitter, reporter, zerolog.Nop(), "Asia/Hong_Kong", func() {})
	t.Cleanup(reg.Close)
	return reg, sink
}

func happyCreatePayload() map[string]any {
	return map[string]any{
		"order_id":       "o1",
		"amount":         12.50,
		"order_type":     "sale",
		"customer_uid":   "c1",
		"status":         "PENDING",
		"direction":      "purchase",
		"payment_method": "card",
		"currency":       "USD",
		"platform":       "web",
		"owners":         []any{"o1"},
		"owner_allocations": []any{
			map[string]any{"owner_uuid": "o1", "amount_cents": 1250},
		},
		"products": []any{map[string]any{"id": "p1"}},
	}
}

// Scenario 1: happy create (§8).
func TestCreate_Happy(t *testing.T) {
	reg, sink := newTestRegistry(t)

	tx, err := reg.Create(context.Background(), happyCreatePayload())
	require.NoError(t, err)

	assert.NotEmpty(t, tx.TransactionID)
	assert.Equal(t, "pending", tx.Status)
	assert.Equal(t, "purchase", tx.Direction)
	assert.False(t, tx.IsDeleted)
	require.Len(t, tx.OwnerAllocations, 1)
	assert.Equal(t, "o1", tx.OwnerAllocations[0]["owner_uuid"])

	actions := sinkActions(sink)
	assert.Contains(t, actions, "transactionCreation")
	assert.Contains(t, actions, "transactionCreationCustomer")
	assert.Contains(t, actions, "transactionCreationOwner")
	assert.Equal(t, 1, countAction(actions, "transactionCreationOwner"))
}

// Scenario 2: invalid direction (§8).
func TestCreate_InvalidDirection(t *testing.T) {
	reg, _ := newTestRegistry(t)

	payload := happyCreatePayload()
	payload["direction"] = "invalid"

	_, err := reg.Create(context.Background(), payload)
	require.Error(t, err)
	code, ok := regerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, regerrors.ErrCodeInvalidDirection, code)

	result, qerr := reg.Query(context.Background(), txregistry.QueryFilters{}, txregistry.Pagination{})
	require.NoError(t, qerr)
	assert.Equal(t, 0, result.Total)
}

// Scenario 3: meta too big (§8).
func TestCreate_MetaTooBig(t *testing.T) {
	reg, _ := newTestRegistry(t)

	payload := happyCreatePayload()
	payload["meta"] = map[string]any{"k": strings.Repeat("x", 5000)}

	_, err := reg.Create(context.Background(), payload)
	require.Error(t, err)
	code, ok := regerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, regerrors.ErrCodeBlobTooLarge, code)
}

// Scenario 4: update with unset (§8).
func TestUpdate_WithUnset(t *testing.T) {
	reg, sink := newTestRegistry(t)

	created, err := reg.Create(context.Background(), happyCreatePayload())
	require.NoError(t, err)

	sink.Reset()
	updated, err := reg.Update(context.Background(), created.TransactionID, map[string]any{
		"refund_reason": map[string]any{"unset": true},
		"status":        "completed",
	})
	require.NoError(t, err)

	assert.Nil(t, updated.RefundReason)
	assert.Equal(t, "completed", updated.Status)

	var diff []map[string]any
	for _, e := range sink.Events() {
		if e.Action == "transactionUpdate" {
			diff, _ = e.Data["changed_fields"].([]map[string]any)
		}
	}
	require.Len(t, diff, 2)
}

// Scenario 5: query with date window, status, and clamped pagination (§8).
func TestQuery_DateWindowAndClampedPagination(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	payload := happyCreatePayload()
	created, err := reg.Create(ctx, payload)
	require.NoError(t, err)
	_, err = reg.Update(ctx, created.TransactionID, map[string]any{"status": "pending"})
	require.NoError(t, err)

	result, err := reg.Query(ctx, txregistry.QueryFilters{
		Status:      "PENDING",
		DateStart:   "2020-01-01",
		DateEnd:     "2100-01-31",
		CustomerUID: "c1",
	}, txregistry.Pagination{Limit: 500, Offset: -5})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Rows), txregistry.MaxQueryLimit)
	for _, row := range result.Rows {
		assert.False(t, row.IsDeleted)
		assert.Equal(t, "pending", row.Status)
		assert.Equal(t, "c1", row.CustomerUID)
	}
	assert.GreaterOrEqual(t, result.Total, len(result.Rows))
}

func TestQuery_InvalidDateRangeSurfaced(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Query(context.Background(), txregistry.QueryFilters{
		DateStart: "2024-02-01",
		DateEnd:   "2024-01-01",
	}, txregistry.Pagination{})
	require.Error(t, err)
	code, ok := regerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, regerrors.ErrCodeInvalidDateRange, code)
}

// Scenario 6: soft-delete idempotence (§8).
func TestDelete_Idempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, happyCreatePayload())
	require.NoError(t, err)

	ok1, err := reg.Delete(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.True(t, ok1)

	first, found, err := reg.Get(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.False(t, found)
	_ = first

	ok2, err := reg.Delete(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.True(t, ok2)
}

func TestGet_NeverReturnsDeletedRow(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, happyCreatePayload())
	require.NoError(t, err)

	_, err = reg.Delete(ctx, created.TransactionID)
	require.NoError(t, err)

	_, found, err := reg.Get(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdate_MissingTransactionNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Update(context.Background(), "does-not-exist", map[string]any{"status": "settled"})
	require.Error(t, err)
	code, ok := regerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, regerrors.ErrCodeTransactionNotFound, code)
}

func TestCountAll_And_CountByStatus(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Create(ctx, happyCreatePayload())
	require.NoError(t, err)

	assert.Equal(t, 1, reg.CountAll(ctx))

	count, err := reg.CountByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = reg.CountByStatus(ctx, "")
	require.Error(t, err)
}

func sinkActions(sink *audit.MemorySink) []string {
	events := sink.Events()
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func countAction(actions []string, action string) int {
	n := 0
	for _, a := range actions {
		if a == action {
			n++
		}
	}
	return n
}
