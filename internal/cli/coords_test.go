package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/autotyper/internal/testutil"
)

// scriptedPointer feeds PointerPosition from a fixed script, then cancels
// the stream and keeps reporting the final position.
type scriptedPointer struct {
	testutil.RecordingActuator
	positions [][2]int
	calls     int
	cancel    context.CancelFunc
}

func (s *scriptedPointer) PointerPosition() (int, int) {
	if s.calls >= len(s.positions) {
		s.cancel()
		p := s.positions[len(s.positions)-1]
		return p[0], p[1]
	}
	p := s.positions[s.calls]
	s.calls++
	return p[0], p[1]
}

func TestStreamCoords_PrintsOnlyChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	act := &scriptedPointer{
		positions: [][2]int{{10, 10}, {10, 10}, {25, 40}, {25, 40}},
		cancel:    cancel,
	}

	var buf bytes.Buffer
	err := streamCoords(ctx, act, &buf, time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "x=10 y=10\nx=25 y=40\n", buf.String())
}
