package txregistry

import (
	"context"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
	"github.com/caldera-ledger/txregistry/internal/shaper"
	"github.com/caldera-ledger/txregistry/internal/txstore"
	"github.com/caldera-ledger/txregistry/internal/whereclause"
)

// QueryFilters is the caller-facing filter map for Query, accepting every
// synonym group named in §4.5.5.
type QueryFilters struct {
	TransactionID string
	CustomerUID   string
	OrderType     string
	Status        string
	OwnerIDs      []string
	DateStart     string
	DateEnd       string
}

// Pagination controls Query's page window (§4.5.5).
type Pagination struct {
	Limit  int
	Offset int
}

// QueryResult is Query's return value: the page of rows plus the total
// matching count across the whole filter (§4.5.5).
type QueryResult struct {
	Rows  []Transaction
	Total int
}

// Query resolves pagination, compiles filters to a safe WHERE, and issues a
// count query followed by a paginated select. Unlike Create, Update, Delete,
// and Get (and like CountAll/CountByStatus, which report 0), Query swallows
// store-level failures and returns an empty page rather than an error — by design, so dashboard/listing callers never see an exception
// (§4.5.5, §7). The one exception is an invalid date window: dateEnd before
// dateStart is a caller mistake, not a store failure, and is surfaced.
func (r *Registry) Query(ctx context.Context, filters QueryFilters, pagination Pagination) (QueryResult, error) {
	limit, offset := clampPagination(pagination)

	compiled, err := r.compileQueryFilters(filters)
	if err != nil {
		if code, ok := regerrors.CodeOf(err); ok && code == regerrors.ErrCodeInvalidDateRange {
			return QueryResult{Rows: []Transaction{}, Total: 0}, err
		}
		r.reportError("query", err)
		r.emitCritical(ctx, "transactionQueryFailed", err.Error(), map[string]any{})
		return QueryResult{Rows: []Transaction{}, Total: 0}, nil
	}

	countRow, _, err := r.gateway.GetRow(ctx, whereclause.ComposeCountSQL(compiled), compiled.Args...)
	if err != nil {
		r.reportError("query", err)
		r.emitCritical(ctx, "transactionQueryFailed", err.Error(), map[string]any{})
		return QueryResult{Rows: []Transaction{}, Total: 0}, nil
	}
	total := toTotal(countRow)

	pageSQL, pageArgs := whereclause.ComposePageSQL(compiled, limit, offset)
	rows, err := r.gateway.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		r.reportError("query", err)
		r.emitCritical(ctx, "transactionQueryFailed", err.Error(), map[string]any{})
		return QueryResult{Rows: []Transaction{}, Total: 0}, nil
	}

	txs := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := rowToTransaction(row)
		if err != nil {
			r.reportError("query", err)
			continue
		}
		txs = append(txs, tx)
	}

	return QueryResult{Rows: txs, Total: total}, nil
}

func clampPagination(p Pagination) (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	offset = p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *Registry) compileQueryFilters(filters QueryFilters) (whereclause.Compiled, error) {
	status := ""
	if filters.Status != "" {
		normalized, _, err := shaper.ShapeStatus(filters.Status, false)
		if err != nil {
			return whereclause.Compiled{}, err
		}
		status = normalized
	}

	loc := whereclause.DefaultLocation(r.timezone)
	dateStart, dateEnd, err := whereclause.ExpandDateWindow(filters.DateStart, filters.DateEnd, loc)
	if err != nil {
		return whereclause.Compiled{}, err
	}

	f := whereclause.Filter{
		Status:        nilIfEmpty(status),
		OrderType:     nilIfEmpty(filters.OrderType),
		CustomerUID:   nilIfEmpty(filters.CustomerUID),
		TransactionID: nilIfEmpty(filters.TransactionID),
		CreatedAfter:  dateStart,
		CreatedBefore: dateEnd,
	}

	if len(filters.OwnerIDs) > 0 {
		ownersJSON, err := txstore.SerializeJSON(dedupeOwners(filters.OwnerIDs))
		if err != nil {
			return whereclause.Compiled{}, err
		}
		f.Owner = &ownersJSON
	}

	return whereclause.Compile(whereclause.Build(f))
}

func dedupeOwners(owners []string) []string {
	seen := make(map[string]bool, len(owners))
	out := make([]string, 0, len(owners))
	for _, o := range owners {
		cleaned := sanitize.SanitizeText(o, false)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		out = append(out, cleaned)
	}
	return out
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toTotal(row map[string]any) int {
	switch v := row["total"].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case string:
		n, ok := sanitize.SanitizeInt(v)
		if !ok {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
