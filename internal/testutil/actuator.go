// Package testutil holds test doubles shared across package tests.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/yhlin/autotyper/internal/actuate"
)

// RecordingActuator captures every actuation primitive as a readable op
// string so tests can assert on the exact input stream. Sleep never
// actually sleeps; it is recorded as an op only when RecordSleeps is set.
type RecordingActuator struct {
	mu  sync.Mutex
	ops []string

	// Images maps template paths to regions LocateImage reports as found.
	Images map[string]actuate.Region

	// FailOn, when non-empty, makes the op whose string has this prefix
	// return ErrInjected.
	FailOn string

	// RecordSleeps adds a "sleep" op per Sleep call, for tests asserting
	// delay placement.
	RecordSleeps bool

	clipboard string
	x, y      int
}

// ErrInjected is the failure RecordingActuator returns for ops matching
// FailOn.
var ErrInjected = fmt.Errorf("injected actuation failure")

func (r *RecordingActuator) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	if r.FailOn != "" && len(op) >= len(r.FailOn) && op[:len(r.FailOn)] == r.FailOn {
		return ErrInjected
	}
	return nil
}

// Ops returns a copy of the recorded op strings in order.
func (r *RecordingActuator) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	copy(out, r.ops)
	return out
}

func (r *RecordingActuator) Click(x, y int) error {
	r.x, r.y = x, y
	return r.record(fmt.Sprintf("click %d,%d", x, y))
}

func (r *RecordingActuator) TypeText(text string, interval time.Duration) error {
	return r.record("type " + text)
}

func (r *RecordingActuator) Press(key string) error {
	return r.record("press " + key)
}

func (r *RecordingActuator) Hotkey(keys ...string) error {
	op := "hotkey"
	for _, k := range keys {
		op += " " + k
	}
	return r.record(op)
}

func (r *RecordingActuator) WriteClipboard(text string) error {
	r.mu.Lock()
	r.clipboard = text
	r.mu.Unlock()
	return r.record("clipboard " + text)
}

// Clipboard returns the last value written with WriteClipboard.
func (r *RecordingActuator) Clipboard() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clipboard
}

func (r *RecordingActuator) LocateImage(path string, confidence float64) (actuate.Region, bool, error) {
	region, found := r.Images[path]
	_ = r.record(fmt.Sprintf("locate %s", path))
	return region, found, nil
}

func (r *RecordingActuator) PointerPosition() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y
}

func (r *RecordingActuator) Sleep(d time.Duration) {
	if r.RecordSleeps {
		_ = r.record("sleep")
	}
}
