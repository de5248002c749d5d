package txstore

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// RebasePlaceholders shifts every $N reference in whereSQL by n, so a WHERE
// clause written against $1..$k can be appended after an n-column SET clause
// (§4.1).
func RebasePlaceholders(whereSQL string, n int) string {
	return placeholderPattern.ReplaceAllStringFunc(whereSQL, func(m string) string {
		idx, _ := strconv.Atoi(m[1:])
		return "$" + strconv.Itoa(idx+n)
	})
}

// HighestPlaceholder returns the largest $N referenced in sql, or 0 if none.
func HighestPlaceholder(sql string) int {
	highest := 0
	for _, m := range placeholderPattern.FindAllStringSubmatch(sql, -1) {
		n, _ := strconv.Atoi(m[1])
		if n > highest {
			highest = n
		}
	}
	return highest
}

// CheckPlaceholderCount rejects sql if it references more placeholders than
// len(args) supplies (§4.1).
func CheckPlaceholderCount(sql string, args []any) error {
	highest := HighestPlaceholder(sql)
	if highest > len(args) {
		return regerrors.New(regerrors.ErrCodeDisallowedClause, "placeholder", fmt.Sprintf("sql references $%d but only %d args supplied", highest, len(args)))
	}
	return nil
}

// ValidateFreeformWhere enforces §4.1's WHERE-string safety rules for
// free-form clauses handed to Update: must carry at least one placeholder,
// must not contain a semicolon, SQL comment markers, or a bare string
// literal quote.
func ValidateFreeformWhere(whereSQL string) error {
	if !placeholderPattern.MatchString(whereSQL) {
		return regerrors.New(regerrors.ErrCodeDisallowedClause, "where", "WHERE clause has no positional placeholder")
	}
	for _, marker := range []string{";", "--", "/*", "*/", "'"} {
		if strings.Contains(whereSQL, marker) {
			return regerrors.New(regerrors.ErrCodeDisallowedClause, "where", "WHERE clause contains forbidden marker: "+marker)
		}
	}
	return nil
}

// preparedStatementName derives a stable name for a SQL text (§4.1). The
// gateway records it per SQL text in an in-memory map; the name is not sent
// to the server and is not used as a metrics label.
func preparedStatementName(sql string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sql))
	return fmt.Sprintf("txreg_%08x", h.Sum32())
}
