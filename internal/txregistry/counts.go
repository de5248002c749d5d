package txregistry

import (
	"context"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/shaper"
)

// CountAll returns the number of live (non-deleted) transactions. Like
// Query, it swallows store failures and reports 0 rather than propagating
// an error (§4.5.6, §7).
func (r *Registry) CountAll(ctx context.Context) int {
	row, _, err := r.gateway.GetRow(ctx, "SELECT COUNT(*) AS total FROM transactions WHERE is_deleted = false")
	if err != nil {
		r.reportError("count_all", err)
		return 0
	}
	return toTotal(row)
}

// CountByStatus returns the number of live transactions with the given
// status. Unlike CountAll, a missing status is a caller error, not a store
// failure, and is surfaced (§4.5.6).
func (r *Registry) CountByStatus(ctx context.Context, status string) (int, error) {
	normalized, ok, err := shaper.ShapeStatus(status, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, regerrors.New(regerrors.ErrCodeInvalidStatus, "count_by_status", "status is required")
	}
	row, _, err := r.gateway.GetRow(ctx,
		"SELECT COUNT(*) AS total FROM transactions WHERE is_deleted = false AND status = $1",
		normalized)
	if err != nil {
		r.reportError("count_by_status", err)
		return 0, nil
	}
	return toTotal(row), nil
}
