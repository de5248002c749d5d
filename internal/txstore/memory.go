package txstore

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// MemoryGateway is an in-process StoreGateway test double, grounded on the
// teacher's MemoryStore (internal/storage/storage.go): a sync.RWMutex-
// guarded map standing in for Postgres. It does not parse arbitrary SQL;
// instead it recognizes the fixed statement shapes the registry package
// ever builds (§4.1's Insert/Update/Query/RunInTx contract), evaluating
// WHERE predicates directly against stored rows.
type MemoryGateway struct {
	mu   sync.RWMutex
	rows map[string]map[string]any // transaction_id -> row
	seq  int
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{rows: make(map[string]map[string]any)}
}

func (g *MemoryGateway) Insert(_ context.Context, schema TableSchema, row map[string]any) (map[string]any, error) {
	if err := schema.ValidateColumns(row); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := row["transaction_id"].(string)
	if !ok || id == "" {
		return nil, regerrors.New(regerrors.ErrCodeInvalidValue, "insert", "row missing transaction_id")
	}
	if _, exists := g.rows[id]; exists {
		return nil, regerrors.New(regerrors.ErrCodeStoreQuery, "insert", "duplicate transaction_id")
	}

	stored := cloneRow(row)
	now := time.Now().UTC().Format(time.RFC3339)
	stored["created_at"] = now
	stored["updated_at"] = now
	g.rows[id] = stored
	return cloneRow(stored), nil
}

func (g *MemoryGateway) Update(_ context.Context, schema TableSchema, setMap map[string]any, whereSQL string, whereArgs []any) ([]map[string]any, error) {
	if err := schema.ValidateColumns(setMap); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var updated []map[string]any
	for id, row := range g.rows {
		if !matchesMemoryWhere(row, whereSQL, whereArgs) {
			continue
		}
		for k, v := range setMap {
			row[k] = v
		}
		row["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		g.rows[id] = row
		updated = append(updated, cloneRow(row))
	}
	return updated, nil
}

func (g *MemoryGateway) Query(_ context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dispatch(sqlText, args)
}

func (g *MemoryGateway) GetRow(_ context.Context, sqlText string, args ...any) (map[string]any, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rows, err := g.dispatch(sqlText, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// dispatch recognizes the fixed statement shapes the registry package ever
// sends through Query/GetRow: a SELECT (including the COUNT(*) form) or an
// UPDATE ... RETURNING *, the latter used by txregistry.Update when it
// issues its own raw UPDATE text inside a RunInTx callback.
func (g *MemoryGateway) dispatch(sqlText string, args []any) ([]map[string]any, error) {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "UPDATE ") {
		return g.runUpdateSQL(sqlText, args)
	}
	return g.runSelect(sqlText, args)
}

// memQuerier adapts MemoryGateway to the querier interface RunInTx's
// callback receives, reusing the same locked-by-caller helpers: RunInTx
// already holds g.mu for the duration of the callback.
type memQuerier struct{ g *MemoryGateway }

func (q *memQuerier) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	return q.g.dispatch(sqlText, args)
}

func (q *memQuerier) GetRow(ctx context.Context, sqlText string, args ...any) (map[string]any, bool, error) {
	rows, err := q.g.dispatch(sqlText, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// RunInTx takes the gateway's write lock for fn's duration, giving fn
// exclusive, consistent access — approximating Postgres's SELECT…FOR
// UPDATE + UPDATE…RETURNING pattern without a real transaction log.
func (g *MemoryGateway) RunInTx(ctx context.Context, fn func(ctx context.Context, q querier) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(ctx, &memQuerier{g: g})
}

func (g *MemoryGateway) runSelect(sqlText string, args []any) ([]map[string]any, error) {
	upper := strings.ToUpper(sqlText)

	if strings.Contains(upper, "COUNT(*)") {
		count := 0
		for _, row := range g.rows {
			if matchesMemorySelectWhere(row, sqlText, args) {
				count++
			}
		}
		return []map[string]any{{"total": int64(count)}}, nil
	}

	var matched []map[string]any
	for _, row := range g.rows {
		if matchesMemorySelectWhere(row, sqlText, args) {
			matched = append(matched, cloneRow(row))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ci, _ := matched[i]["created_at"].(string)
		cj, _ := matched[j]["created_at"].(string)
		return ci > cj
	})

	limit, offset, hasPaging := extractLimitOffset(sqlText, args)
	if hasPaging {
		if offset >= len(matched) {
			return nil, nil
		}
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	return matched, nil
}

var updateSetPattern = regexp.MustCompile(`"?(\w+)"?\s*=\s*\$(\d+)`)

// runUpdateSQL parses an "UPDATE transactions SET col1 = $1, ... WHERE
// <clauses> RETURNING *" statement built by txregistry.Update, applies the
// SET assignments to every matching row, and returns them.
func (g *MemoryGateway) runUpdateSQL(sqlText string, args []any) ([]map[string]any, error) {
	upper := strings.ToUpper(sqlText)
	whereIdx := strings.Index(upper, " WHERE ")
	if whereIdx == -1 {
		return nil, nil
	}
	setPart := sqlText[:whereIdx]
	wherePart := sqlText[whereIdx+len(" WHERE "):]
	if retIdx := strings.Index(strings.ToUpper(wherePart), "RETURNING"); retIdx != -1 {
		wherePart = wherePart[:retIdx]
	}

	assignments := updateSetPattern.FindAllStringSubmatch(setPart, -1)

	var updated []map[string]any
	for id, row := range g.rows {
		if !matchesMemoryWhere(row, strings.TrimSpace(wherePart), args) {
			continue
		}
		for _, m := range assignments {
			col := m[1]
			idx, _ := strconv.Atoi(m[2])
			if idx >= 1 && idx <= len(args) {
				row[col] = args[idx-1]
			}
		}
		row["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		g.rows[id] = row
		updated = append(updated, cloneRow(row))
	}
	return updated, nil
}

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
