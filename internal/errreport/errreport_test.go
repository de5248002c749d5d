package errreport

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_ClipsOversizedFields(t *testing.T) {
	r := New(zerolog.Nop())

	r.Record(strings.Repeat("m", maxPreviewBytes+100), RecordOptions{
		Err:   errors.New("boom"),
		Stack: strings.Repeat("s", maxStackBytes+100),
		Context: map[string]any{
			"blob": strings.Repeat("c", maxContextBytes+100),
		},
	})

	recent := r.Recent()
	require.Len(t, recent, 1)
	assert.LessOrEqual(t, len(recent[0].Preview), maxPreviewBytes)
	assert.LessOrEqual(t, len(recent[0].Stack), maxStackBytes)
	assert.LessOrEqual(t, len(recent[0].Context), maxContextBytes)
}

func TestRecent_WrapsAroundRing(t *testing.T) {
	r := New(zerolog.Nop())
	for i := 0; i < ringCapacity+10; i++ {
		r.Record("err", RecordOptions{})
	}
	assert.Len(t, r.Recent(), ringCapacity)
}
