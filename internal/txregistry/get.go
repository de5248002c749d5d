package txregistry

import "context"

// Get returns the live transaction identified by transactionID, or
// found=false if it does not exist or has been soft-deleted (§4.5.4). No
// audit event is emitted on the happy path.
func (r *Registry) Get(ctx context.Context, transactionID string) (Transaction, bool, error) {
	row, found, err := r.gateway.GetRow(ctx,
		"SELECT * FROM transactions WHERE transaction_id = $1 AND is_deleted = false LIMIT 1",
		transactionID)
	if err != nil {
		r.reportError("get", err)
		r.emitCritical(ctx, "transactionGetFailed", err.Error(), map[string]any{"transaction_id": transactionID})
		return Transaction{}, false, err
	}
	if !found {
		return Transaction{}, false, nil
	}

	tx, err := rowToTransaction(row)
	if err != nil {
		r.reportError("get", err)
		return Transaction{}, false, err
	}
	return tx, true, nil
}
