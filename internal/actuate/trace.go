package actuate

import (
	"log/slog"
	"time"
)

// Trace is an Actuator that logs every primitive instead of delivering it.
// It backs dry runs: the engine executes a full flow against Trace and the
// operator reads the would-be input stream from the log.
type Trace struct {
	logger *slog.Logger

	// RealSleep makes Sleep actually block, so a traced run has the same
	// pacing as a live one. Off by default.
	RealSleep bool

	// Images maps template paths to regions LocateImage should report.
	// Templates not in the map are reported as not found.
	Images map[string]Region

	x, y      int
	clipboard string
}

// NewTrace returns a Trace logging through logger.
func NewTrace(logger *slog.Logger) *Trace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trace{logger: logger}
}

func (t *Trace) Click(x, y int) error {
	t.x, t.y = x, y
	t.logger.Info("click", "x", x, "y", y)
	return nil
}

func (t *Trace) TypeText(text string, interval time.Duration) error {
	t.logger.Info("type", "text", text, "interval", interval)
	return nil
}

func (t *Trace) Press(key string) error {
	t.logger.Info("press", "key", key)
	return nil
}

func (t *Trace) Hotkey(keys ...string) error {
	t.logger.Info("hotkey", "keys", keys)
	return nil
}

func (t *Trace) WriteClipboard(text string) error {
	t.clipboard = text
	t.logger.Info("clipboard", "text", text)
	return nil
}

// Clipboard returns the last value written with WriteClipboard.
func (t *Trace) Clipboard() string { return t.clipboard }

func (t *Trace) LocateImage(path string, confidence float64) (Region, bool, error) {
	region, found := t.Images[path]
	t.logger.Info("locate", "image", path, "confidence", confidence, "found", found)
	return region, found, nil
}

func (t *Trace) PointerPosition() (int, int) { return t.x, t.y }

func (t *Trace) Sleep(d time.Duration) {
	t.logger.Debug("sleep", "duration", d)
	if t.RealSleep {
		time.Sleep(d)
	}
}
