// Package txstore implements the Store Gateway (SPEC_FULL.md §4.1): a
// narrow Postgres access layer with identifier/column safety, timeouts,
// retries, circuit breaking, and transaction support. Grounded on the
// teacher's internal/storage/postgres_store.go (table/column handling,
// prepared-statement naming, JSONB marshaling) and internal/dbpool (pool
// configuration).
package txstore

import (
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdentifier validates a (possibly schema-qualified) SQL identifier
// against identifierPattern and quotes each segment with pq.QuoteIdentifier,
// rejecting anything else with ErrCodeInvalidIdentifier (§4.1).
func QuoteIdentifier(name string) (string, error) {
	segments := strings.Split(name, ".")
	quoted := make([]string, 0, len(segments))

	for _, seg := range segments {
		if !identifierPattern.MatchString(seg) {
			return "", regerrors.New(regerrors.ErrCodeInvalidIdentifier, "identifier", "invalid identifier segment: "+seg)
		}
		quoted = append(quoted, pq.QuoteIdentifier(seg))
	}

	return strings.Join(quoted, "."), nil
}

// ValidateIdentifier checks identifier shape without quoting, for callers
// that only need the validation side (e.g. column whitelisting).
func ValidateIdentifier(name string) error {
	for _, seg := range strings.Split(name, ".") {
		if !identifierPattern.MatchString(seg) {
			return regerrors.New(regerrors.ErrCodeInvalidIdentifier, "identifier", "invalid identifier segment: "+seg)
		}
	}
	return nil
}
