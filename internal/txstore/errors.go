package txstore

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// FailureClass categorizes a driver-level error for retry/metrics purposes
// (§4.1: Connection, Syntax, Query).
type FailureClass string

const (
	FailureConnection FailureClass = "connection"
	FailureSyntax     FailureClass = "syntax"
	FailureQuery      FailureClass = "query"
)

// retryableSQLStates are the Postgres SQLSTATE codes the retry envelope
// considers transient: serialization failure, deadlock detected, connection
// failure, connection does not exist.
var retryableSQLStates = map[string]bool{
	"40001": true,
	"40P01": true,
	"08006": true,
	"08003": true,
}

// ClassifyError inspects err (expected to be, or wrap, a *pq.Error) and
// returns its FailureClass.
func ClassifyError(err error) FailureClass {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		if retryableSQLStates[code] {
			return FailureConnection
		}
		if strings.HasPrefix(code, "42") {
			return FailureSyntax
		}
		return FailureQuery
	}
	return FailureConnection
}

// IsRetryable reports whether err's class and SQLSTATE should trigger the
// gateway's retry envelope.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return retryableSQLStates[string(pqErr.Code)]
	}
	return false
}

// ValidateValue rejects NaN/Inf floats and nil-but-required values before a
// row reaches SQL assembly (§4.1).
func ValidateValue(v any, required bool) error {
	if v == nil {
		if required {
			return regerrors.New(regerrors.ErrCodeInvalidValue, "value", "required value is nil")
		}
		return nil
	}
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return regerrors.New(regerrors.ErrCodeInvalidValue, "value", "value is NaN or Inf")
		}
	}
	return nil
}

// errorRecord is one entry in the gateway's diagnostic ring buffer.
type errorRecord struct {
	Op    string
	Class FailureClass
	Err   string
}

const errorRingCapacity = 200

// errorRing is a fixed-capacity ring buffer of recent gateway errors,
// exposed via Gateway.RecentErrors() for diagnostics (§4.1).
type errorRing struct {
	mu     sync.Mutex
	buf    []errorRecord
	cursor int
	filled bool
}

func newErrorRing() *errorRing {
	return &errorRing{buf: make([]errorRecord, errorRingCapacity)}
}

func (r *errorRing) record(op string, class FailureClass, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.cursor] = errorRecord{Op: op, Class: class, Err: err.Error()}
	r.cursor = (r.cursor + 1) % errorRingCapacity
	if r.cursor == 0 {
		r.filled = true
	}
}

// snapshot returns recorded errors, oldest first.
func (r *errorRing) snapshot() []errorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filled {
		out := make([]errorRecord, r.cursor)
		copy(out, r.buf[:r.cursor])
		return out
	}

	out := make([]errorRecord, errorRingCapacity)
	copy(out, r.buf[r.cursor:])
	copy(out[errorRingCapacity-r.cursor:], r.buf[:r.cursor])
	return out
}
