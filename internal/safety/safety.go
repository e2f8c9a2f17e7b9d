// Package safety implements the cooperative pause/stop controller the
// engine consults between steps. Pausing blocks the engine at the next
// checkpoint; stopping makes every present and future checkpoint fail with
// ErrStopped until the controller is reset.
package safety

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned from Check once the operator has requested a stop.
// The engine treats it as an orderly shutdown signal, not a failure.
var ErrStopped = errors.New("stop requested")

// State is the controller's operator-visible condition.
type State int

const (
	StateRunning State = iota
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Controller gates the engine's progress. One controller serves one run;
// Reset rearms it for the next.
//
// All methods are safe for concurrent use. Check is called by the engine
// goroutine; TogglePause and Stop are called from hotkey and signal
// handlers.
type Controller struct {
	mu      sync.Mutex
	gate    chan struct{} // closed while running, open (blocking) while paused
	stopped bool
	notify  func(State)
}

// NewController returns a controller in the running state. If notify is
// non-nil it is called with the new state after every transition, from the
// goroutine that caused it.
func NewController(notify func(State)) *Controller {
	gate := make(chan struct{})
	close(gate)
	return &Controller{gate: gate, notify: notify}
}

// Check blocks while paused and returns ErrStopped once a stop has been
// requested. A stop issued during a pause releases the wait and reports
// ErrStopped. Cancellation of ctx also releases the wait.
func (c *Controller) Check(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	gate := c.gate
	c.mu.Unlock()

	select {
	case <-gate:
	case <-ctx.Done():
		return ctx.Err()
	}

	// A stop may have arrived while we were parked on the gate.
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	return nil
}

// TogglePause flips between running and paused. It has no effect after a
// stop. Returns the resulting state.
func (c *Controller) TogglePause() State {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return StateStopped
	}
	var state State
	select {
	case <-c.gate:
		// Gate was closed: we were running, now pause.
		c.gate = make(chan struct{})
		state = StatePaused
	default:
		// Gate open: we were paused, resume.
		close(c.gate)
		state = StateRunning
	}
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return state
}

// Stop requests an orderly shutdown. If the engine is parked at a paused
// checkpoint it is released immediately with ErrStopped. Stop is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	select {
	case <-c.gate:
	default:
		close(c.gate)
	}
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(StateStopped)
	}
}

// State reports the current condition without blocking.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return StateStopped
	}
	select {
	case <-c.gate:
		return StateRunning
	default:
		return StatePaused
	}
}

// Reset rearms a stopped or paused controller for a new run.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.stopped = false
	select {
	case <-c.gate:
	default:
		close(c.gate)
	}
	c.mu.Unlock()
}
