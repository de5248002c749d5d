package whereclause

import "fmt"

// ComposeCountSQL builds the count query for a compiled WHERE body (§4.4).
func ComposeCountSQL(c Compiled) string {
	return fmt.Sprintf("SELECT COUNT(*) AS total FROM transactions WHERE %s", c.WhereSQL)
}

// ComposePageSQL builds the paginated SELECT for a compiled WHERE body,
// appending LIMIT/OFFSET placeholders at baseArgs+1 and baseArgs+2 (§4.4).
func ComposePageSQL(c Compiled, limit, offset int) (string, []any) {
	k1 := len(c.Args) + 1
	k2 := len(c.Args) + 2
	sql := fmt.Sprintf(
		"SELECT * FROM transactions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		c.WhereSQL, k1, k2,
	)
	args := append(append([]any{}, c.Args...), limit, offset)
	return sql, args
}
