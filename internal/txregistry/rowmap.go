package txregistry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// rowToTransaction decodes a Store Gateway row map into a Transaction,
// deserializing the JSONB-backed fields via goccy/go-json.
func rowToTransaction(row map[string]any) (Transaction, error) {
	tx := Transaction{
		TransactionID: stringField(row, "transaction_id"),
		OrderID:       stringField(row, "order_id"),
		OrderType:     stringField(row, "order_type"),
		CustomerUID:   stringField(row, "customer_uid"),
		Status:        stringField(row, "status"),
		Direction:     stringField(row, "direction"),
		PaymentMethod: stringField(row, "payment_method"),
		Currency:      stringField(row, "currency"),
		Platform:      stringField(row, "platform"),
		WriteStatus:   stringField(row, "write_status"),
		IsDeleted:     boolField(row, "is_deleted"),
	}

	tx.IPAddress = optionalStringField(row, "ip_address")
	tx.UserAgent = optionalStringField(row, "user_agent")
	tx.ParentTransactionID = optionalStringField(row, "parent_transaction_id")
	tx.DisputeID = optionalStringField(row, "dispute_id")
	tx.RefundReason = optionalStringField(row, "refund_reason")

	amount, err := decimalField(row, "amount")
	if err != nil {
		return Transaction{}, regerrors.Wrap(regerrors.ErrCodeStoreQuery, "rowToTransaction", err)
	}
	tx.Amount = amount

	if raw, ok := row["refund_amount"]; ok && raw != nil {
		d, err := decimalField(row, "refund_amount")
		if err != nil {
			return Transaction{}, regerrors.Wrap(regerrors.ErrCodeStoreQuery, "rowToTransaction", err)
		}
		tx.RefundAmount = &d
	}

	if raw := stringField(row, "meta"); raw != "" {
		var meta map[string]any
		if err := txstore.DeserializeJSON(raw, &meta); err != nil {
			return Transaction{}, err
		}
		tx.Meta = meta
	}
	if raw := stringField(row, "owners"); raw != "" {
		var owners []string
		if err := txstore.DeserializeJSON(raw, &owners); err != nil {
			return Transaction{}, err
		}
		tx.Owners = owners
	}
	if raw := stringField(row, "owner_allocations"); raw != "" {
		var allocations []map[string]any
		if err := txstore.DeserializeJSON(raw, &allocations); err != nil {
			return Transaction{}, err
		}
		tx.OwnerAllocations = allocations
	}
	if raw := stringField(row, "products"); raw != "" {
		var products []any
		if err := txstore.DeserializeJSON(raw, &products); err != nil {
			return Transaction{}, err
		}
		tx.Products = products
	}

	tx.DeletedAt = timeField(row, "deleted_at")
	if createdAt := timeField(row, "created_at"); createdAt != nil {
		tx.CreatedAt = *createdAt
	}
	if updatedAt := timeField(row, "updated_at"); updatedAt != nil {
		tx.UpdatedAt = *updatedAt
	}

	return tx, nil
}

func stringField(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

func optionalStringField(row map[string]any, key string) *string {
	v, ok := row[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func boolField(row map[string]any, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "t"
	default:
		return false
	}
}

func decimalField(row map[string]any, key string) (decimal.Decimal, error) {
	switch v := row[key].(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		if v == "" {
			return decimal.Decimal{}, nil
		}
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, nil
	}
}

func timeField(row map[string]any, key string) *time.Time {
	v, ok := row[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if t == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
