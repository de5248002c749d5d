package txstore

import (
	"context"
	"time"

	"github.com/caldera-ledger/txregistry/internal/txmetrics"
)

// RetryConfig controls the gateway's retry envelope (§4.1), grounded on the
// teacher's internal/callbacks.RetryableClient backoff loop.
type RetryConfig struct {
	Enabled     bool
	MaxAttempts int
	Backoff     time.Duration
}

// withRetry runs fn up to cfg.MaxAttempts times, retrying only when fn's
// error is retryable per IsRetryable, with linear backoff between attempts.
// Syntax and other non-transient errors fail on the first attempt.
func withRetry(ctx context.Context, cfg RetryConfig, op string, m *txmetrics.Metrics, fn func() error) error {
	if !cfg.Enabled {
		return fn()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		m.RecordRetryAttempt(op, string(ClassifyError(lastErr)))
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Backoff * time.Duration(attempt)):
		}
	}

	return lastErr
}
