// Package txregistry implements the Transaction Operations (SPEC_FULL.md
// §4.5): Create, Update, Delete, Get, Query, CountAll, CountByStatus, and
// Close, composing the Input Sanitizer, Payload Shaper, WHERE Compiler, and
// Store Gateway, and driving the Audit Emitter and Error Reporter. Grounded
// on the teacher's internal/storage/postgres_store.go operation layout (one
// concern per file) and internal/paywall's create/update/verify split.
package txregistry

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the registry's single persistent entity (§3).
type Transaction struct {
	TransactionID       string
	OrderID             string
	Amount              decimal.Decimal
	OrderType           string
	CustomerUID         string
	Status              string
	Direction           string
	PaymentMethod       string
	Currency            string
	Platform            string
	IPAddress           *string
	UserAgent           *string
	ParentTransactionID *string
	DisputeID           *string
	RefundReason        *string
	RefundAmount        *decimal.Decimal
	Meta                map[string]any
	Owners              []string
	OwnerAllocations    []map[string]any
	Products            []any
	WriteStatus         string
	IsDeleted           bool
	DeletedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
