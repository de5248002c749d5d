package audit

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_FansOutToAllSinks(t *testing.T) {
	e := New(zerolog.Nop())
	sinkA := NewMemorySink()
	sinkB := NewMemorySink()
	e.Register(sinkA)
	e.Register(sinkB)

	e.Emit(context.Background(), Event{Flag: "transaction", Action: "created", Message: "tx created"})

	require.Len(t, sinkA.Events(), 1)
	require.Len(t, sinkB.Events(), 1)
	assert.Equal(t, "created", sinkA.Events()[0].Action)
}

type panickingSink struct{}

func (panickingSink) Name() string { return "panicker" }
func (panickingSink) Handle(context.Context, Event) {
	panic("sink exploded")
}

func TestEmitter_RecoversPanickingSink(t *testing.T) {
	e := New(zerolog.Nop())
	good := NewMemorySink()
	e.Register(panickingSink{})
	e.Register(good)

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), Event{Action: "updated"})
	})
	assert.Len(t, good.Events(), 1)
}
