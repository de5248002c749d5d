package txregistry

import (
	"context"
	"fmt"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
	"github.com/caldera-ledger/txregistry/internal/shaper"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// allowedUpdateFields maps the fields Update accepts to their sanitizer
// type (§4.5.2). Any other key in the caller's fields map is rejected.
var allowedUpdateFields = map[string]sanitize.FieldType{
	"status":        sanitize.TypeText,
	"refund_amount": sanitize.TypeFloat,
	"refund_reason": sanitize.TypeText,
	"dispute_id":    sanitize.TypeText,
	"meta":          sanitize.TypeObject,
	"write_status":  sanitize.TypeText,
	"products":      sanitize.TypeArray,
}

// changedField is one entry of an update's audit diff.
type changedField struct {
	Field    string
	OldValue any
	NewValue any
}

// Update applies fields to the live transaction identified by transactionID
// under a row lock, returning the post-update row (§4.5.2).
func (r *Registry) Update(ctx context.Context, transactionID string, fields map[string]any) (Transaction, error) {
	for field := range fields {
		if _, ok := allowedUpdateFields[field]; !ok {
			err := regerrors.New(regerrors.ErrCodeInvalidValue, field, "field is not updatable")
			r.reportError("update", err)
			r.emitCritical(ctx, "transactionUpdateFailed", err.Error(), map[string]any{"transaction_id": transactionID})
			return Transaction{}, err
		}
	}

	var result Transaction
	var changes []changedField

	txErr := r.gateway.RunInTx(ctx, func(ctx context.Context, q txstoreQuerier) error {
		row, found, err := q.GetRow(ctx,
			"SELECT * FROM transactions WHERE transaction_id = $1 AND is_deleted = false FOR UPDATE",
			transactionID)
		if err != nil {
			return err
		}
		if !found {
			return regerrors.New(regerrors.ErrCodeTransactionNotFound, "update", "transaction not found or deleted: "+transactionID)
		}

		before, err := rowToTransaction(row)
		if err != nil {
			return err
		}

		setMap, changed, err := r.buildUpdateSet(fields, before)
		if err != nil {
			return err
		}
		if len(setMap) == 0 {
			result = before
			return nil
		}

		updated, err := r.applyUpdate(ctx, q, transactionID, setMap)
		if err != nil {
			return err
		}

		result = updated
		changes = changed
		return nil
	})

	if txErr != nil {
		r.reportError("update", txErr)
		r.emitCritical(ctx, "transactionUpdateFailed", txErr.Error(), map[string]any{"transaction_id": transactionID})
		return Transaction{}, txErr
	}

	if len(changes) > 0 {
		r.emitUpdateAudit(ctx, result, changes)
	}
	return result, nil
}

// txstoreQuerier aliases the narrow handle RunInTx passes to its callback.
// txstore's unexported querier is itself an alias of this same interface
// literal, so both names denote one identical type.
type txstoreQuerier = interface {
	Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error)
	GetRow(ctx context.Context, sqlText string, args ...any) (map[string]any, bool, error)
}

func (r *Registry) buildUpdateSet(fields map[string]any, before Transaction) (map[string]any, []changedField, error) {
	setMap := make(map[string]any, len(fields))
	var changes []changedField

	for field, raw := range fields {
		if isUnsetMarker(raw) {
			oldValue := oldValueOf(before, field)
			setMap[field] = nil
			changes = append(changes, changedField{Field: field, OldValue: oldValue, NewValue: nil})
			continue
		}

		newValue, oldValue, err := r.sanitizeUpdateField(field, raw, before)
		if err != nil {
			return nil, nil, err
		}
		setMap[field] = newValue
		changes = append(changes, changedField{Field: field, OldValue: oldValue, NewValue: newValue})
	}

	return setMap, changes, nil
}

func (r *Registry) sanitizeUpdateField(field string, raw any, before Transaction) (newValue, oldValue any, err error) {
	switch field {
	case "status":
		status, _, serr := shaper.ShapeStatus(raw, false)
		if serr != nil {
			return nil, nil, serr
		}
		return status, before.Status, nil

	case "refund_amount":
		d, ok := sanitize.SanitizeFloat(raw)
		if !ok {
			return nil, nil, regerrors.New(regerrors.ErrCodeInvalidValue, field, "invalid refund_amount")
		}
		return d.String(), before.RefundAmount, nil

	case "refund_reason", "dispute_id", "write_status":
		text := sanitize.SanitizeText(raw, false)
		return text, oldPointerValue(before, field), nil

	case "meta":
		shaped, serr := shaper.ShapeMeta(raw)
		if serr != nil {
			return nil, nil, serr
		}
		metaJSON, serr := txstore.SerializeJSON(shaped)
		if serr != nil {
			return nil, nil, serr
		}
		return metaJSON, before.Meta, nil

	case "products":
		shaped, serr := shaper.ShapeProducts(raw)
		if serr != nil {
			return nil, nil, serr
		}
		productsJSON, serr := txstore.SerializeJSON(shaped)
		if serr != nil {
			return nil, nil, serr
		}
		return productsJSON, before.Products, nil

	default:
		return nil, nil, regerrors.New(regerrors.ErrCodeInvalidValue, field, "field is not updatable")
	}
}

func oldPointerValue(before Transaction, field string) any {
	switch field {
	case "refund_reason":
		return before.RefundReason
	case "dispute_id":
		return before.DisputeID
	case "write_status":
		return before.WriteStatus
	default:
		return nil
	}
}

func oldValueOf(before Transaction, field string) any {
	switch field {
	case "status":
		return before.Status
	case "refund_amount":
		return before.RefundAmount
	case "refund_reason":
		return before.RefundReason
	case "dispute_id":
		return before.DisputeID
	case "meta":
		return before.Meta
	case "write_status":
		return before.WriteStatus
	case "products":
		return before.Products
	default:
		return nil
	}
}

func isUnsetMarker(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	flag, _ := m["unset"].(bool)
	return flag
}

func (r *Registry) applyUpdate(ctx context.Context, q txstoreQuerier, transactionID string, setMap map[string]any) (Transaction, error) {
	setClauses := make([]string, 0, len(setMap))
	args := make([]any, 0, len(setMap)+1)
	i := 1
	for col, v := range setMap {
		if err := txstoreValidateColumn(col); err != nil {
			return Transaction{}, err
		}
		setClauses = append(setClauses, fmt.Sprintf("%q = $%d", col, i))
		args = append(args, v)
		i++
	}
	args = append(args, transactionID)

	sqlText := "UPDATE transactions SET "
	for idx, clause := range setClauses {
		if idx > 0 {
			sqlText += ", "
		}
		sqlText += clause
	}
	sqlText += fmt.Sprintf(" WHERE transaction_id = $%d AND is_deleted = false RETURNING *", len(setMap)+1)

	rows, err := q.Query(ctx, sqlText, args...)
	if err != nil {
		return Transaction{}, err
	}
	if len(rows) == 0 {
		return Transaction{}, regerrors.New(regerrors.ErrCodeTransactionNotFound, "update", "transaction not found or deleted: "+transactionID)
	}
	return rowToTransaction(rows[0])
}

func txstoreValidateColumn(col string) error {
	if !txstore.TransactionsSchema.Columns[col] {
		return regerrors.New(regerrors.ErrCodeInvalidIdentifier, "column", "unknown column: "+col)
	}
	return nil
}

func (r *Registry) emitUpdateAudit(ctx context.Context, tx Transaction, changes []changedField) {
	changedPayload := make([]map[string]any, 0, len(changes))
	for _, c := range changes {
		changedPayload = append(changedPayload, map[string]any{
			"field":     c.Field,
			"old_value": c.OldValue,
			"new_value": c.NewValue,
		})
	}

	r.emit(ctx, "transactionUpdate", "transaction updated", map[string]any{
		"transaction_id": tx.TransactionID,
		"changed_fields": changedPayload,
	})

	if tx.CustomerUID != "" {
		r.emit(ctx, "transactionUpdateCustomer", "transaction updated for customer", map[string]any{
			"transaction_id": tx.TransactionID,
			"customer_uid":   tx.CustomerUID,
		})
	}

	for _, allocation := range tx.OwnerAllocations {
		r.emit(ctx, "transactionUpdateOwner", "transaction updated for owner", map[string]any{
			"transaction_id": tx.TransactionID,
			"owner_uuid":     allocation["owner_uuid"],
		})
	}
}
