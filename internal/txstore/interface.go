package txstore

import "context"

// StoreGateway is the narrow interface internal/txregistry depends on, so
// tests can swap in MemoryGateway without touching a real Postgres
// connection — grounded on the teacher's Store interface in
// internal/storage/storage.go, which both PostgresStore and MemoryStore
// implement.
type StoreGateway interface {
	Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error)
	GetRow(ctx context.Context, sqlText string, args ...any) (map[string]any, bool, error)
	Insert(ctx context.Context, schema TableSchema, row map[string]any) (map[string]any, error)
	Update(ctx context.Context, schema TableSchema, setMap map[string]any, whereSQL string, whereArgs []any) ([]map[string]any, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, q querier) error) error
}

var (
	_ StoreGateway = (*Gateway)(nil)
	_ StoreGateway = (*MemoryGateway)(nil)
)
