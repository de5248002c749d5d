// Package audit implements the Audit Emitter (SPEC_FULL.md §4.6): a
// best-effort fan-out of transaction/customer/owner events to registered
// sinks. Grounded on the teacher's internal/observability.Registry
// (RWMutex-guarded hook slice, per-dispatch panic recovery so one bad sink
// can never fail the owning operation), generalized from the teacher's
// fixed per-domain hook interfaces to a single Sink interface since the
// registry's event shape is uniform.
package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Event is one audit record (§4.6).
type Event struct {
	Flag     string
	Action   string
	Message  string
	Data     map[string]any
	Critical bool
}

// Sink receives audit events. Implementations must not block indefinitely;
// Emitter does not enforce a timeout on Sink.Handle, matching the teacher's
// hook contract.
type Sink interface {
	Name() string
	Handle(ctx context.Context, event Event)
}

// Emitter fans an Event out to every registered Sink, best-effort: a sink
// that panics is recovered, logged, and otherwise ignored, never propagated
// to the caller (§4.6).
type Emitter struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger zerolog.Logger
}

// New builds an Emitter that logs sink failures via logger.
func New(logger zerolog.Logger) *Emitter {
	return &Emitter{logger: logger}
}

// Register adds a sink. Safe to call concurrently with Emit.
func (e *Emitter) Register(sink Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
	e.logger.Info().Str("sink", sink.Name()).Msg("registered audit sink")
}

// Emit dispatches event to every registered sink. Each sink call is
// isolated: a panic is recovered and logged, never allowed to unwind into
// the caller or block delivery to the remaining sinks (§4.6).
func (e *Emitter) Emit(ctx context.Context, event Event) {
	e.mu.RLock()
	sinks := e.sinks
	e.mu.RUnlock()

	for _, sink := range sinks {
		e.dispatch(ctx, sink, event)
	}
}

func (e *Emitter) dispatch(ctx context.Context, sink Sink, event Event) {
	defer e.recoverPanic(sink.Name(), event.Action)
	sink.Handle(ctx, event)
}

func (e *Emitter) recoverPanic(sinkName, action string) {
	if r := recover(); r != nil {
		e.logger.Error().
			Str("sink", sinkName).
			Str("action", action).
			Interface("panic", r).
			Msg("audit sink panicked (recovered)")
	}
}
