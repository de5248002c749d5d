package txregistry

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/caldera-ledger/txregistry/internal/audit"
	"github.com/caldera-ledger/txregistry/internal/errreport"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// MaxQueryLimit and DefaultQueryLimit bound Query's pagination (§4.5.5).
const (
	MaxQueryLimit     = 200
	DefaultQueryLimit = 20
)

// Registry composes the Store Gateway, Audit Emitter, and Error Reporter
// into the seven Transaction Operations (§4.5). It is the library's single
// external entry point — callers never touch the layers below directly.
type Registry struct {
	gateway  txstore.StoreGateway
	audit    *audit.Emitter
	errs     *errreport.Reporter
	logger   zerolog.Logger
	timezone string

	closeOnce sync.Once
	closeFn   func()
}

// New builds a Registry. closeFn releases pool resources and is invoked at
// most once regardless of how many times Close is called (§4.5.7).
func New(gateway txstore.StoreGateway, emitter *audit.Emitter, reporter *errreport.Reporter, logger zerolog.Logger, timezone string, closeFn func()) *Registry {
	return &Registry{
		gateway:  gateway,
		audit:    emitter,
		errs:     reporter,
		logger:   logger,
		timezone: timezone,
		closeFn:  closeFn,
	}
}

// Close releases pool resources once; subsequent calls are no-ops (§4.5.7).
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		if r.closeFn != nil {
			r.closeFn()
		}
	})
}

func (r *Registry) reportError(op string, err error) {
	r.errs.Record(op+" failed", errreport.RecordOptions{
		Err: err,
	})
}

func (r *Registry) emitCritical(ctx context.Context, action, message string, data map[string]any) {
	r.audit.Emit(ctx, audit.Event{
		Flag:     "transaction",
		Action:   action,
		Message:  message,
		Data:     data,
		Critical: true,
	})
}

func (r *Registry) emit(ctx context.Context, action, message string, data map[string]any) {
	r.audit.Emit(ctx, audit.Event{
		Flag:    "transaction",
		Action:  action,
		Message: message,
		Data:    data,
	})
}
