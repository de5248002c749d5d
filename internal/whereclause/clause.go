// Package whereclause implements the WHERE Compiler (SPEC_FULL.md §4.4): an
// allow-listed clause grammar that turns a filter map into safe SQL, never
// interpolating caller-controlled values directly into the query text.
// Grounded on the teacher's identifier/clause guarding in
// internal/products/postgres_repository.go, generalized from a single fixed
// query into a reusable clause allowlist.
package whereclause

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// allowedClausePattern matches the exact clause shapes §4.4 permits, with $N
// standing for any positional placeholder.
var allowedClausePattern = regexp.MustCompile(
	`^(is_deleted = false|transaction_id = \$\d+|customer_uid = \$\d+|owners @> \$\d+|order_type = \$\d+|status = \$\d+|created_at >= \$\d+|created_at <= \$\d+)$`,
)

var forbiddenMarkers = []string{";", "--", "/*", "*/"}

// Clause is one allow-listed predicate paired with its positional argument,
// if it takes one ("is_deleted = false" takes none).
type Clause struct {
	SQL string
	Arg any
}

// Validate checks a single clause string against the allowlist and the
// forbidden-marker blacklist, matching §4.4.
func Validate(clauseSQL string) error {
	for _, marker := range forbiddenMarkers {
		if strings.Contains(clauseSQL, marker) {
			return regerrors.New(regerrors.ErrCodeDisallowedClause, "whereclause", "clause contains forbidden marker: "+clauseSQL)
		}
	}
	if !allowedClausePattern.MatchString(clauseSQL) {
		return regerrors.New(regerrors.ErrCodeDisallowedClause, "whereclause", "clause not in allowlist: "+clauseSQL)
	}
	return nil
}

// Compiled holds the AND-joined WHERE body and its flattened argument list,
// ready to be embedded in a count or paginated SELECT.
type Compiled struct {
	WhereSQL string
	Args     []any
}

// Compile validates every clause and renumbers placeholders starting from 1,
// so callers can build clauses independently of final argument position.
func Compile(clauses []Clause) (Compiled, error) {
	parts := make([]string, 0, len(clauses))
	args := make([]any, 0, len(clauses))

	placeholder := 1
	for _, c := range clauses {
		rendered := c.SQL
		if strings.Contains(rendered, "$") {
			rendered = rebasePlaceholder(rendered, placeholder)
			args = append(args, c.Arg)
			placeholder++
		}
		if err := Validate(rendered); err != nil {
			return Compiled{}, err
		}
		parts = append(parts, rendered)
	}

	return Compiled{
		WhereSQL: strings.Join(parts, " AND "),
		Args:     args,
	}, nil
}

// rebasePlaceholder rewrites a clause's literal $N marker (callers pass
// templates using $1) to the compiler-assigned placeholder index.
func rebasePlaceholder(clauseSQL string, n int) string {
	idx := strings.Index(clauseSQL, "$")
	if idx == -1 {
		return clauseSQL
	}
	end := idx + 1
	for end < len(clauseSQL) && clauseSQL[end] >= '0' && clauseSQL[end] <= '9' {
		end++
	}
	return clauseSQL[:idx] + fmt.Sprintf("$%d", n) + clauseSQL[end:]
}
