package txstore

import (
	"regexp"
	"strconv"
	"strings"
)

var clauseTokenPattern = regexp.MustCompile(`^(\S+)\s*(=|>=|<=|@>)\s*(\$\d+|false)$`)

// matchesMemoryWhere evaluates a bare AND-joined WHERE clause (as passed to
// Gateway.Update, already placeholder-rebased) against one stored row.
func matchesMemoryWhere(row map[string]any, whereSQL string, args []any) bool {
	for _, clause := range strings.Split(whereSQL, " AND ") {
		if !evalClause(row, strings.TrimSpace(clause), args) {
			return false
		}
	}
	return true
}

// matchesMemorySelectWhere extracts the WHERE body from a full SELECT/COUNT
// statement, stopping at whichever of ORDER BY / LIMIT / RETURNING appears
// first, and evaluates it.
func matchesMemorySelectWhere(row map[string]any, sqlText string, args []any) bool {
	upper := strings.ToUpper(sqlText)
	idx := strings.Index(upper, "WHERE ")
	if idx == -1 {
		return true
	}
	rest := sqlText[idx+len("WHERE "):]
	restUpper := strings.ToUpper(rest)
	cut := len(rest)
	for _, marker := range []string{"ORDER BY", "LIMIT", "RETURNING"} {
		if mi := strings.Index(restUpper, marker); mi != -1 && mi < cut {
			cut = mi
		}
	}
	rest = rest[:cut]
	return matchesMemoryWhere(row, strings.TrimSpace(rest), args)
}

func evalClause(row map[string]any, clause string, args []any) bool {
	m := clauseTokenPattern.FindStringSubmatch(clause)
	if m == nil {
		return true // unrecognized clause shapes are treated as always-true no-ops
	}
	col, op, rhs := m[1], m[2], m[3]

	if rhs == "false" {
		b, _ := row[col].(bool)
		return b == false
	}

	n, _ := strconv.Atoi(strings.TrimPrefix(rhs, "$"))
	if n < 1 || n > len(args) {
		return false
	}
	want := args[n-1]

	switch op {
	case "=":
		return equalLoose(row[col], want)
	case ">=", "<=":
		return compareLoose(row[col], want, op)
	case "@>":
		return containsLoose(row[col], want)
	}
	return false
}

func equalLoose(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return a == b
}

func compareLoose(a, b any, op string) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return false
	}
	if op == ">=" {
		return as >= bs
	}
	return as <= bs
}

func containsLoose(a, want any) bool {
	ws, ok := want.(string)
	if !ok {
		return false
	}
	switch v := a.(type) {
	case string:
		return strings.Contains(v, ws)
	case []string:
		for _, item := range v {
			if item == ws {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == ws {
				return true
			}
		}
	}
	return false
}

var limitOffsetPattern = regexp.MustCompile(`LIMIT \$(\d+) OFFSET \$(\d+)`)

func extractLimitOffset(sqlText string, args []any) (limit, offset int, ok bool) {
	m := limitOffsetPattern.FindStringSubmatch(sqlText)
	if m == nil {
		return 0, 0, false
	}
	li, _ := strconv.Atoi(m[1])
	oi, _ := strconv.Atoi(m[2])
	if li < 1 || li > len(args) || oi < 1 || oi > len(args) {
		return 0, 0, false
	}
	limit = toInt(args[li-1])
	offset = toInt(args[oi-1])
	return limit, offset, true
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	default:
		return 0
	}
}
