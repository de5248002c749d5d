// Package regerrors defines the error taxonomy shared across the transaction
// registry core: sanitizer, shaper, WHERE compiler, store gateway, and
// operations all report failures through a single ErrorCode enum so callers
// can branch on a stable kind instead of parsing message text.
package regerrors

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	// Input Sanitizer (§4.2)
	ErrCodeMissingRequired ErrorCode = "missing_required"
	ErrCodeInvalidValue    ErrorCode = "invalid_value"

	// Payload Shaper (§4.3)
	ErrCodeInvalidMetaKey    ErrorCode = "invalid_meta_key"
	ErrCodeBlobTooLarge      ErrorCode = "blob_too_large"
	ErrCodeInvalidDirection  ErrorCode = "invalid_direction"
	ErrCodeInvalidStatus     ErrorCode = "invalid_status"
	ErrCodeInvalidAllocation ErrorCode = "invalid_allocation"

	// Query (§4.5.5)
	ErrCodeInvalidDateRange ErrorCode = "invalid_date_range"

	// WHERE Compiler / Store Gateway (§4.1, §4.4)
	ErrCodeDisallowedClause   ErrorCode = "disallowed_clause"
	ErrCodeInvalidIdentifier ErrorCode = "invalid_identifier"

	// Transaction Operations (§4.5)
	ErrCodeTransactionNotFound ErrorCode = "transaction_not_found"
	ErrCodeUnknownField        ErrorCode = "unknown_field"

	// Store Gateway failure classes (§4.1)
	ErrCodeStoreConnection ErrorCode = "store_connection"
	ErrCodeStoreSyntax     ErrorCode = "store_syntax"
	ErrCodeStoreQuery      ErrorCode = "store_query"

	// Best-effort sinks (§4.6, §4.7)
	ErrCodeAuditFailure         ErrorCode = "audit_failure"
	ErrCodeErrorReporterFailure ErrorCode = "error_reporter_failure"
)

// IsRetryable reports whether the store's retry envelope should attempt the
// operation again. Only transient store-level failure classes are retryable;
// validation and syntax errors never are.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrCodeStoreConnection:
		return true
	default:
		return false
	}
}

// Surfaced reports whether the error kind is one that an operation should
// propagate to its caller. Query (§4.5.5) intentionally swallows everything
// except ErrCodeInvalidDateRange, so this alone does not decide that policy;
// see txregistry.Query for the swallow behavior.
func (c ErrorCode) Surfaced() bool {
	switch c {
	case ErrCodeAuditFailure, ErrCodeErrorReporterFailure:
		return false
	default:
		return true
	}
}
