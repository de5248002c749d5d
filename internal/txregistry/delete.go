package txregistry

import (
	"context"
	"time"

	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// Delete soft-deletes the transaction identified by transactionID. It is
// idempotent: deleting an already-deleted or absent id is not an error and
// always returns true, and a second call never re-touches deleted_at
// (§4.5.3, §8 scenario 6).
func (r *Registry) Delete(ctx context.Context, transactionID string) (bool, error) {
	rows, err := r.gateway.Update(ctx, txstore.TransactionsSchema, map[string]any{
		"is_deleted": true,
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
	}, "transaction_id = $1 AND is_deleted = false", []any{transactionID})

	if err != nil {
		r.reportError("delete", err)
		r.emitCritical(ctx, "deleteTransactionFailed", err.Error(), map[string]any{"transaction_id": transactionID})
		return false, err
	}

	if len(rows) > 0 {
		r.emit(ctx, "deleteTransaction", "transaction soft-deleted", map[string]any{
			"transaction_id": transactionID,
		})
	}

	return true, nil
}
