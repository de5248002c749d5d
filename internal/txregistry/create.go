package txregistry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
	"github.com/caldera-ledger/txregistry/internal/sanitize"
	"github.com/caldera-ledger/txregistry/internal/shaper"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// requiredTextFields lists the §3 attributes that are non-empty text and
// required on create.
var requiredTextFields = []string{
	"order_id", "order_type", "customer_uid",
	"payment_method", "currency", "platform",
}

var optionalTextFields = []string{
	"ip_address", "user_agent", "parent_transaction_id", "dispute_id", "refund_reason",
}

// Create sanitizes, shapes, and inserts a new transaction row, then fans out
// the creation audit events (§4.5.1).
func (r *Registry) Create(ctx context.Context, payload map[string]any) (Transaction, error) {
	row, err := r.buildCreateRow(payload)
	if err != nil {
		r.reportError("create", err)
		r.emitCritical(ctx, "transactionCreationFailed", err.Error(), map[string]any{"order_id": payload["order_id"]})
		return Transaction{}, err
	}

	inserted, err := r.gateway.Insert(ctx, txstore.TransactionsSchema, row)
	if err != nil {
		r.reportError("create", err)
		r.emitCritical(ctx, "transactionCreationFailed", err.Error(), map[string]any{"order_id": payload["order_id"]})
		return Transaction{}, err
	}

	tx, err := rowToTransaction(inserted)
	if err != nil {
		r.reportError("create", err)
		return Transaction{}, err
	}

	r.emitCreateAudit(ctx, tx)
	return tx, nil
}

func (r *Registry) buildCreateRow(payload map[string]any) (map[string]any, error) {
	schema := sanitize.Schema{}
	for _, field := range requiredTextFields {
		schema[field] = sanitize.Field{Value: payload[field], Type: sanitize.TypeText, Required: true}
	}
	for _, field := range optionalTextFields {
		schema[field] = sanitize.Field{Value: payload[field], Type: sanitize.TypeText}
	}
	schema["write_status"] = sanitize.Field{Value: payload["write_status"], Type: sanitize.TypeText, Default: "confirmed", HasDefault: true}

	sanitized, err := sanitize.SanitizeValidate(schema)
	if err != nil {
		return nil, err
	}

	amount, ok := sanitize.SanitizeFloat(payload["amount"])
	if !ok {
		return nil, regerrors.New(regerrors.ErrCodeInvalidValue, "amount", "amount is required and must be a finite decimal")
	}

	payloadShape, err := shaper.Shape(payload, true)
	if err != nil {
		return nil, err
	}

	if len(payloadShape.Owners) == 0 {
		return nil, regerrors.New(regerrors.ErrCodeMissingRequired, "owners", "owners must be a non-empty array")
	}

	ownersJSON, err := txstore.SerializeJSON(payloadShape.Owners)
	if err != nil {
		return nil, err
	}
	allocationsJSON, err := txstore.SerializeJSON(payloadShape.OwnerAllocations)
	if err != nil {
		return nil, err
	}
	productsJSON, err := txstore.SerializeJSON(payloadShape.Products)
	if err != nil {
		return nil, err
	}
	var metaJSON string
	if payloadShape.Meta != nil {
		metaJSON, err = txstore.SerializeJSON(payloadShape.Meta)
		if err != nil {
			return nil, err
		}
	}

	var refundAmount *decimal.Decimal
	if payload["refund_amount"] != nil {
		d, ok := sanitize.SanitizeFloat(payload["refund_amount"])
		if !ok {
			return nil, regerrors.New(regerrors.ErrCodeInvalidValue, "refund_amount", "invalid refund_amount")
		}
		refundAmount = &d
	}

	row := map[string]any{
		"transaction_id":   uuid.NewString(),
		"order_id":         sanitized["order_id"],
		"amount":           amount.String(),
		"order_type":       sanitized["order_type"],
		"customer_uid":     sanitized["customer_uid"],
		"status":           payloadShape.Status,
		"direction":        payloadShape.Direction,
		"payment_method":   sanitized["payment_method"],
		"currency":         sanitized["currency"],
		"platform":         sanitized["platform"],
		"owners":           ownersJSON,
		"owner_allocations": allocationsJSON,
		"products":         productsJSON,
		"write_status":     sanitized["write_status"],
		"is_deleted":       false,
	}

	for _, field := range optionalTextFields {
		if v, ok := sanitized[field]; ok && v != nil {
			row[field] = v
		}
	}
	if metaJSON != "" {
		row["meta"] = metaJSON
	}
	if refundAmount != nil {
		row["refund_amount"] = refundAmount.String()
	}

	return row, nil
}

func (r *Registry) emitCreateAudit(ctx context.Context, tx Transaction) {
	r.emit(ctx, "transactionCreation", "transaction created", map[string]any{
		"transaction_id": tx.TransactionID,
		"order_id":       tx.OrderID,
	})

	if tx.CustomerUID != "" {
		r.emit(ctx, "transactionCreationCustomer", "transaction created for customer", map[string]any{
			"transaction_id": tx.TransactionID,
			"customer_uid":   tx.CustomerUID,
		})
	}

	for _, allocation := range tx.OwnerAllocations {
		r.emit(ctx, "transactionCreationOwner", "transaction created for owner", map[string]any{
			"transaction_id": tx.TransactionID,
			"owner_uuid":     allocation["owner_uuid"],
			"amount_cents":   allocation["amount_cents"],
		})
	}
}
