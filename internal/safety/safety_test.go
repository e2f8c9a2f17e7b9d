package safety

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_CheckPassesWhileRunning(t *testing.T) {
	c := NewController(nil)
	assert.NoError(t, c.Check(context.Background()))
	assert.Equal(t, StateRunning, c.State())
}

func TestController_PauseBlocksCheck(t *testing.T) {
	c := NewController(nil)
	require.Equal(t, StatePaused, c.TogglePause())

	released := make(chan error, 1)
	go func() {
		released <- c.Check(context.Background())
	}()

	// The checkpoint must not pass while paused.
	select {
	case <-released:
		t.Fatal("Check returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	require.Equal(t, StateRunning, c.TogglePause())

	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Check did not return after resume")
	}
}

func TestController_StopFailsCheck(t *testing.T) {
	c := NewController(nil)
	c.Stop()

	err := c.Check(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateStopped, c.State())
}

func TestController_StopReleasesPausedCheck(t *testing.T) {
	c := NewController(nil)
	c.TogglePause()

	released := make(chan error, 1)
	go func() {
		released <- c.Check(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	c.Stop()

	select {
	case err := <-released:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("Check did not return after stop")
	}
}

func TestController_StopIsIdempotent(t *testing.T) {
	var transitions []State
	c := NewController(func(s State) { transitions = append(transitions, s) })

	c.Stop()
	c.Stop()
	c.Stop()

	assert.Equal(t, []State{StateStopped}, transitions)
}

func TestController_TogglePauseAfterStopIsNoop(t *testing.T) {
	c := NewController(nil)
	c.Stop()
	assert.Equal(t, StateStopped, c.TogglePause())
}

func TestController_ContextCancelReleasesPausedCheck(t *testing.T) {
	c := NewController(nil)
	c.TogglePause()

	ctx, cancel := context.WithCancel(context.Background())
	released := make(chan error, 1)
	go func() {
		released <- c.Check(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-released:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Check did not return after cancel")
	}
}

func TestController_ResetRearms(t *testing.T) {
	c := NewController(nil)
	c.Stop()
	require.ErrorIs(t, c.Check(context.Background()), ErrStopped)

	c.Reset()
	assert.NoError(t, c.Check(context.Background()))
	assert.Equal(t, StateRunning, c.State())
}

func TestController_NotifyOnTransitions(t *testing.T) {
	var transitions []State
	c := NewController(func(s State) { transitions = append(transitions, s) })

	c.TogglePause()
	c.TogglePause()
	c.Stop()

	assert.Equal(t, []State{StatePaused, StateRunning, StateStopped}, transitions)
}
