package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSink writes every event through the structured logger, at Warn level
// for Critical events and Info otherwise.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink builds a Sink that logs via logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Handle(_ context.Context, event Event) {
	entry := s.logger.Info()
	if event.Critical {
		entry = s.logger.Warn()
	}
	entry.
		Str("flag", event.Flag).
		Str("action", event.Action).
		Interface("data", event.Data).
		Bool("critical", event.Critical).
		Msg(event.Message)
}

// MemorySink records every event it receives, for test assertions.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink builds a Sink that keeps events in memory.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Handle(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a snapshot of every event recorded so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset discards every event recorded so far.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
