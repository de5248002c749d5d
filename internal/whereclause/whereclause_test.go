package whereclause

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllowsExactPatterns(t *testing.T) {
	allowed := []string{
		"is_deleted = false",
		"transaction_id = $1",
		"customer_uid = $2",
		"owners @> $3",
		"order_type = $1",
		"status = $1",
		"created_at >= $1",
		"created_at <= $2",
	}
	for _, clause := range allowed {
		assert.NoError(t, Validate(clause), clause)
	}
}

func TestValidate_RejectsUnknownClause(t *testing.T) {
	err := Validate("transaction_id = $1 OR 1=1")
	assert.Error(t, err)
}

func TestValidate_RejectsForbiddenMarkers(t *testing.T) {
	for _, clause := range []string{
		"status = $1; DROP TABLE transactions",
		"status = $1 -- comment",
		"status = $1 /* comment */",
	} {
		assert.Error(t, Validate(clause), clause)
	}
}

func TestCompile_RebasesPlaceholders(t *testing.T) {
	compiled, err := Compile([]Clause{
		{SQL: "is_deleted = false"},
		{SQL: "customer_uid = $1", Arg: "cust-1"},
		{SQL: "status = $1", Arg: "settled"},
	})
	require.NoError(t, err)
	assert.Equal(t, "is_deleted = false AND customer_uid = $1 AND status = $2", compiled.WhereSQL)
	assert.Equal(t, []any{"cust-1", "settled"}, compiled.Args)
}

func TestBuild_AlwaysFiltersDeleted(t *testing.T) {
	clauses := Build(Filter{})
	require.Len(t, clauses, 1)
	assert.Equal(t, "is_deleted = false", clauses[0].SQL)
}

func TestComposeCountSQL(t *testing.T) {
	compiled, err := Compile(Build(Filter{CustomerUID: strPtr("cust-1")}))
	require.NoError(t, err)
	sql := ComposeCountSQL(compiled)
	assert.Equal(t, "SELECT COUNT(*) AS total FROM transactions WHERE is_deleted = false AND customer_uid = $1", sql)
}

func TestComposePageSQL(t *testing.T) {
	compiled, err := Compile(Build(Filter{Status: strPtr("pending")}))
	require.NoError(t, err)
	sql, args := ComposePageSQL(compiled, 20, 40)
	assert.Equal(t, "SELECT * FROM transactions WHERE is_deleted = false AND status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", sql)
	assert.Equal(t, []any{"pending", 20, 40}, args)
}

func TestExpandDateWindow(t *testing.T) {
	loc := DefaultLocation("Asia/Hong_Kong")
	start, end, err := ExpandDateWindow("2026-01-01", "2026-01-02", loc)
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)

	startParsed, _ := time.Parse(time.RFC3339, *start)
	endParsed, _ := time.Parse(time.RFC3339, *end)
	assert.Equal(t, 0, startParsed.Hour())
	assert.Equal(t, 23, endParsed.Hour())
	assert.True(t, endParsed.After(startParsed))
}

func TestExpandDateWindow_RejectsInvertedRange(t *testing.T) {
	loc := DefaultLocation("")
	_, _, err := ExpandDateWindow("2026-02-02", "2026-01-01", loc)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
