package txstore

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/caldera-ledger/txregistry/internal/txmetrics"
)

// operationClass isolates read and write traffic into separate breakers, so
// a spike of failing writes doesn't trip reads and vice versa (§4.1),
// grounded on the teacher's internal/circuitbreaker.Manager per-service
// isolation, generalized from per-external-service to per-operation-class.
type operationClass string

const (
	classRead  operationClass = "read"
	classWrite operationClass = "write"
)

// breakers holds one gobreaker.CircuitBreaker per operation class.
type breakers struct {
	read  *gobreaker.CircuitBreaker
	write *gobreaker.CircuitBreaker
}

func newBreakers(m *txmetrics.Metrics) *breakers {
	return &breakers{
		read:  newBreaker(string(classRead), m),
		write: newBreaker(string(classWrite), m),
	}
}

func newBreaker(name string, m *txmetrics.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.RecordCircuitStateChange(name, to.String())
		},
	})
}

func (b *breakers) forClass(class operationClass) *gobreaker.CircuitBreaker {
	if class == classWrite {
		return b.write
	}
	return b.read
}

// withCircuit wraps fn with the breaker for class. fn's own error is returned
// unchanged, so Gateway callers can keep testing it with regerrors.CodeOf.
// When the breaker rejects a call, gobreaker's ErrOpenState or
// ErrTooManyRequests is returned as-is and carries no regerrors code.
func withCircuit(b *breakers, class operationClass, fn func() error) error {
	_, err := b.forClass(class).Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}
