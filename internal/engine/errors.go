package engine

import (
	"errors"
	"fmt"

	"github.com/yhlin/autotyper/internal/flowdef"
)

// ErrNoImageMatch is returned when a template image never appears on screen
// within the locate timeout. The record being entered fails hard: later
// steps would land on the wrong control.
var ErrNoImageMatch = errors.New("template image not found on screen")

// ErrAlreadyRunning is returned when Run is called while a run is active.
var ErrAlreadyRunning = errors.New("a run is already in progress")

// StepError wraps a failure inside one DSL step with enough context to
// name the step in logs and ledger entries.
type StepError struct {
	Action flowdef.Action
	Desc   string
	Err    error
}

func (e *StepError) Error() string {
	if e.Desc != "" {
		return fmt.Sprintf("step %s (%s): %v", e.Action, e.Desc, e.Err)
	}
	return fmt.Sprintf("step %s: %v", e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
