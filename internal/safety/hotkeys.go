package safety

import (
	"log/slog"
	"sync"
)

// KeySource delivers global hotkey presses as key names on a channel. The
// platform glue behind it registers OS-level hooks; tests feed a scripted
// channel.
type KeySource interface {
	// Events yields key names ("f9", "f10") until Close.
	Events() <-chan string
	Close() error
}

// Binding names the keys that drive the controller.
type Binding struct {
	Pause string
	Stop  string
}

// DefaultBinding pauses on F9 and stops on F10.
func DefaultBinding() Binding {
	return Binding{Pause: "f9", Stop: "f10"}
}

// Bind wires a key source to the controller in a background goroutine and
// returns an unbind function. Unbind closes the source and waits for the
// goroutine to drain; it is safe to call more than once.
func Bind(c *Controller, src KeySource, b Binding, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for key := range src.Events() {
			switch key {
			case b.Pause:
				state := c.TogglePause()
				logger.Info("pause hotkey", "key", key, "state", state.String())
			case b.Stop:
				c.Stop()
				logger.Info("stop hotkey", "key", key)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := src.Close(); err != nil {
				logger.Warn("closing key source", "error", err)
			}
			<-done
		})
	}
}
