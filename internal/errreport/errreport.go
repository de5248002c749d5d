// Package errreport implements the Error Reporter (SPEC_FULL.md §4.7): an
// in-process sink for structured error records with size-capped fields (each
// is clipped to a byte ceiling; their content is not otherwise filtered),
// mirroring the Store Gateway's diagnostic ring buffer
// (internal/txstore's errorRing) and the teacher's structured-logging style.
package errreport

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	maxStackBytes   = 4000
	maxContextBytes = 2000
	maxPreviewBytes = 1500
	ringCapacity    = 500
)

// RecordOptions carries the optional detail accompanying a reported error.
type RecordOptions struct {
	Err     error
	Stack   string
	Context map[string]any
}

// Record is one stored, capped error report.
type Record struct {
	Message string
	Preview string
	Stack   string
	Context string
}

// Reporter logs and retains error reports; it never raises (§4.7).
type Reporter struct {
	logger zerolog.Logger

	mu     sync.Mutex
	buf    []Record
	cursor int
	filled bool
}

// New builds a Reporter that logs via logger.
func New(logger zerolog.Logger) *Reporter {
	return &Reporter{logger: logger, buf: make([]Record, ringCapacity)}
}

// Record captures message and opts, clipping each field to its size ceiling
// before logging and storing it.
func (r *Reporter) Record(message string, opts RecordOptions) {
	preview := clip(message, maxPreviewBytes)

	stack := clip(opts.Stack, maxStackBytes)

	contextJSON := ""
	if opts.Context != nil {
		if raw, err := json.Marshal(opts.Context); err == nil {
			contextJSON = clip(string(raw), maxContextBytes)
		}
	}

	entry := r.logger.Error()
	if opts.Err != nil {
		entry = entry.Err(opts.Err)
	}
	entry.
		Str("stack", stack).
		Str("context", contextJSON).
		Msg(preview)

	r.store(Record{Message: message, Preview: preview, Stack: stack, Context: contextJSON})
}

func (r *Reporter) store(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.cursor] = rec
	r.cursor = (r.cursor + 1) % ringCapacity
	if r.cursor == 0 {
		r.filled = true
	}
}

// Recent returns recorded reports, oldest first.
func (r *Reporter) Recent() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filled {
		out := make([]Record, r.cursor)
		copy(out, r.buf[:r.cursor])
		return out
	}

	out := make([]Record, ringCapacity)
	copy(out, r.buf[r.cursor:])
	copy(out[ringCapacity-r.cursor:], r.buf[:r.cursor])
	return out
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
