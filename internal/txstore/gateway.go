package txstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caldera-ledger/txregistry/internal/logger"
	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/txmetrics"
)

// TimeoutConfig carries the statement/lock timeouts that RunInTx applies via
// SET LOCAL at the start of each transaction (§4.1). Query, GetRow, Insert,
// and Update calls made outside RunInTx run without these timeouts.
type TimeoutConfig struct {
	Statement time.Duration
	Lock      time.Duration // zero means unlimited
}

// Gateway is the Store Gateway: a narrow Postgres access layer wrapping
// *sql.DB with identifier safety, timeouts, retries, a circuit breaker, and
// diagnostics (§4.1).
type Gateway struct {
	db       *sql.DB
	timeouts TimeoutConfig
	retry    RetryConfig
	metrics  *txmetrics.Metrics
	breakers *breakers
	errs     *errorRing

	preparedMu sync.Mutex
	prepared   map[string]string
}

// New builds a Gateway over an already-pooled *sql.DB (see internal/dbpool).
func New(db *sql.DB, timeouts TimeoutConfig, retry RetryConfig, m *txmetrics.Metrics) *Gateway {
	return &Gateway{
		db:       db,
		timeouts: timeouts,
		retry:    retry,
		metrics:  m,
		breakers: newBreakers(m),
		errs:     newErrorRing(),
		prepared: make(map[string]string),
	}
}

// querier is the narrow handle RunInTx's callback receives: only Query and
// GetRow, never raw transaction control, matching §4.1's contract. It is an
// alias of an interface literal, so another package can declare an alias of
// the same literal and write RunInTx callbacks with an identical type.
type querier = interface {
	Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
	GetRow(ctx context.Context, sql string, args ...any) (map[string]any, bool, error)
}

// Query runs sql and returns every result row as a column-name map.
func (g *Gateway) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	return g.query(ctx, g.db, classRead, "query", sqlText, args)
}

// GetRow runs sql and returns the first row, or ok=false if there were none.
func (g *Gateway) GetRow(ctx context.Context, sqlText string, args ...any) (map[string]any, bool, error) {
	rows, err := g.query(ctx, g.db, classRead, "get_row", sqlText, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

type sqlExecer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (g *Gateway) query(ctx context.Context, execer sqlExecer, class operationClass, op, sqlText string, args []any) ([]map[string]any, error) {
	if err := CheckPlaceholderCount(sqlText, args); err != nil {
		return nil, err
	}
	g.recordPrepared(sqlText)

	var result []map[string]any
	var runErr error
	stop := g.metrics.MeasureQuery(op, tableNameOf(sqlText), &runErr)
	defer stop()

	runErr = withCircuit(g.breakers, class, func() error {
		return withRetry(ctx, g.retry, op, g.metrics, func() error {
			rows, err := execer.QueryContext(ctx, sqlText, args...)
			if err != nil {
				g.recordFailure(op, err)
				return classifyStoreError(op, err)
			}
			defer rows.Close()

			scanned, err := scanRows(rows)
			if err != nil {
				g.recordFailure(op, err)
				return classifyStoreError(op, err)
			}
			result = scanned
			return nil
		})
	})

	return result, runErr
}

// Insert inserts row into table (validated against schema's column
// allowlist) and returns the inserted row as scanned back via RETURNING *.
func (g *Gateway) Insert(ctx context.Context, schema TableSchema, row map[string]any) (map[string]any, error) {
	if err := schema.ValidateColumns(row); err != nil {
		return nil, err
	}
	for col, v := range row {
		if err := ValidateValue(v, false); err != nil {
			return nil, regerrors.Wrap(regerrors.ErrCodeInvalidValue, col, err)
		}
	}

	quotedTable, err := QuoteIdentifier(schema.Name)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(row))
	placeholders := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	i := 1
	for col, v := range row {
		quotedCol, err := QuoteIdentifier(col)
		if err != nil {
			return nil, err
		}
		cols = append(cols, quotedCol)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
		args = append(args, v)
		i++
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quotedTable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	rows, err := g.query(ctx, g.db, classWrite, "insert", sqlText, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, regerrors.New(regerrors.ErrCodeStoreQuery, "insert", "insert returned no row")
	}
	return rows[0], nil
}

// Update applies setMap to every row matching whereSQL/whereArgs (a
// free-form clause validated by ValidateFreeformWhere, with placeholders
// rebased past the SET clause's own), returning the updated rows via
// RETURNING *.
func (g *Gateway) Update(ctx context.Context, schema TableSchema, setMap map[string]any, whereSQL string, whereArgs []any) ([]map[string]any, error) {
	if err := schema.ValidateColumns(setMap); err != nil {
		return nil, err
	}
	if err := ValidateFreeformWhere(whereSQL); err != nil {
		return nil, err
	}

	quotedTable, err := QuoteIdentifier(schema.Name)
	if err != nil {
		return nil, err
	}

	setClauses := make([]string, 0, len(setMap))
	args := make([]any, 0, len(setMap)+len(whereArgs))
	i := 1
	for col, v := range setMap {
		quotedCol, err := QuoteIdentifier(col)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", quotedCol, i))
		args = append(args, v)
		i++
	}

	rebasedWhere := RebasePlaceholders(whereSQL, len(setMap))
	args = append(args, whereArgs...)

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *",
		quotedTable, strings.Join(setClauses, ", "), rebasedWhere)

	return g.query(ctx, g.db, classWrite, "update", sqlText, args)
}

// txHandle adapts an in-flight *sql.Tx to the querier interface handed to
// RunInTx's callback.
type txHandle struct {
	gw   *Gateway
	tx   *sql.Tx
	name string
}

func (h *txHandle) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	return h.gw.query(ctx, h.tx, classWrite, "tx_query:"+h.name, sqlText, args)
}

func (h *txHandle) GetRow(ctx context.Context, sqlText string, args ...any) (map[string]any, bool, error) {
	rows, err := h.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// RunInTx runs fn inside BEGIN/COMMIT, applying the gateway's configured
// statement/lock timeouts via SET LOCAL, and rolling back on error or panic
// (a panic is re-raised after the rollback). RunInTx does not nest: fn only
// sees Query/GetRow, and no savepoints are issued.
func (g *Gateway) RunInTx(ctx context.Context, fn func(ctx context.Context, q querier) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyStoreError("begin_tx", err)
	}

	if err := applyLocalTimeouts(ctx, tx, g.timeouts); err != nil {
		_ = tx.Rollback()
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	handle := &txHandle{gw: g, tx: tx}

	if err := fn(ctx, handle); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.FromContext(ctx).Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classifyStoreError("commit_tx", err)
	}
	return nil
}

func applyLocalTimeouts(ctx context.Context, tx *sql.Tx, timeouts TimeoutConfig) error {
	if timeouts.Statement > 0 {
		ms := timeouts.Statement.Milliseconds()
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)); err != nil {
			return classifyStoreError("set_statement_timeout", err)
		}
	}
	if timeouts.Lock > 0 {
		ms := timeouts.Lock.Milliseconds()
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)); err != nil {
			return classifyStoreError("set_lock_timeout", err)
		}
	}
	return nil
}

// RecentErrors returns the gateway's diagnostic ring buffer, oldest first.
func (g *Gateway) RecentErrors() []errorRecord {
	return g.errs.snapshot()
}

func (g *Gateway) recordFailure(op string, err error) {
	g.errs.record(op, ClassifyError(err), err)
}

func (g *Gateway) recordPrepared(sqlText string) {
	g.preparedMu.Lock()
	defer g.preparedMu.Unlock()
	if _, ok := g.prepared[sqlText]; ok {
		return
	}
	g.prepared[sqlText] = preparedStatementName(sqlText)
}

func classifyStoreError(op string, err error) error {
	switch ClassifyError(err) {
	case FailureSyntax:
		return regerrors.Wrap(regerrors.ErrCodeStoreSyntax, op, err)
	case FailureConnection:
		return regerrors.Wrap(regerrors.ErrCodeStoreConnection, op, err)
	default:
		return regerrors.Wrap(regerrors.ErrCodeStoreQuery, op, err)
	}
}

// tableNameOf is a best-effort label extractor for metrics; it never affects
// query execution, only the Prometheus label value.
func tableNameOf(sqlText string) string {
	upper := strings.ToUpper(sqlText)
	for _, marker := range []string{"FROM ", "INTO ", "UPDATE "} {
		if idx := strings.Index(upper, marker); idx != -1 {
			rest := strings.TrimSpace(sqlText[idx+len(marker):])
			end := strings.IndexAny(rest, " \n\t(")
			if end == -1 {
				end = len(rest)
			}
			return strings.Trim(rest[:end], `"`)
		}
	}
	return "unknown"
}
