// Package actuate defines the input-actuation contract the engine drives.
//
// The engine only ever calls these primitives; how a click or keystroke is
// physically delivered (and how a template image is located on screen) is
// platform glue supplied by the embedding application. The package ships a
// Trace implementation that simulates delivery for dry runs.
package actuate

import "time"

// Region is a matched template image's bounding box in screen coordinates.
type Region struct {
	X, Y, W, H int
}

// Center returns the region's center point.
func (r Region) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Actuator delivers pointer and keyboard input to the foreground
// application. Exactly one actuation stream may exist per process: callers
// must never drive one Actuator from two goroutines at once.
type Actuator interface {
	// Click presses and releases the primary button at screen coordinates.
	Click(x, y int) error

	// TypeText delivers text as individual keystrokes, pausing interval
	// between each. Only safe for 7-bit ASCII text.
	TypeText(text string, interval time.Duration) error

	// Press presses and releases a single named key ("enter", "tab").
	Press(key string) error

	// Hotkey presses the keys in order and releases them in reverse,
	// e.g. Hotkey("ctrl", "a").
	Hotkey(keys ...string) error

	// WriteClipboard replaces the system clipboard contents. Used with
	// Hotkey("ctrl","v") to enter text that keystroke simulation cannot.
	WriteClipboard(text string) error

	// LocateImage searches the screen for a template image. found=false
	// with a nil error means the template simply is not visible yet.
	LocateImage(path string, confidence float64) (region Region, found bool, err error)

	// PointerPosition reports the current pointer coordinates.
	PointerPosition() (x, y int)

	// Sleep pauses the actuation stream. Implementations used in tests
	// may return immediately.
	Sleep(d time.Duration)
}
