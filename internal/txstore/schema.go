package txstore

import "github.com/caldera-ledger/txregistry/internal/regerrors"

// TableSchema carries the allowed-column set for a table, letting
// Insert/Update reject unknown columns before SQL assembly (§4.1).
type TableSchema struct {
	Name    string
	Columns map[string]bool
}

// NewTableSchema builds a TableSchema from a table name and its allowed
// column list.
func NewTableSchema(name string, columns ...string) TableSchema {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return TableSchema{Name: name, Columns: set}
}

// ValidateColumns rejects any key in row not present in the schema's
// allowed-column set.
func (s TableSchema) ValidateColumns(row map[string]any) error {
	for col := range row {
		if !s.Columns[col] {
			return regerrors.New(regerrors.ErrCodeInvalidIdentifier, "column", "unknown column for table "+s.Name+": "+col)
		}
	}
	return nil
}

// TransactionsSchema is the TableSchema for the transactions table,
// grounding the registry's column whitelist (§3 data model).
var TransactionsSchema = NewTableSchema("transactions",
	"transaction_id",
	"order_id",
	"amount",
	"order_type",
	"customer_uid",
	"status",
	"direction",
	"payment_method",
	"currency",
	"platform",
	"ip_address",
	"user_agent",
	"parent_transaction_id",
	"dispute_id",
	"refund_reason",
	"refund_amount",
	"meta",
	"owners",
	"owner_allocations",
	"products",
	"write_status",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
)
