package safety

import (
	"log/slog"
	"strings"
)

// FocusProbe reports the title of the foreground window. Platform glue
// supplies the real probe; a nil probe disables the check entirely.
type FocusProbe interface {
	ForegroundTitle() (string, error)
}

// FocusCheck verifies the expected application holds focus before input is
// synthesized. The check fails open: if the probe is missing or errors, the
// run proceeds and the condition is logged, because refusing to run on a
// probe defect would be worse than a best-effort warning.
type FocusCheck struct {
	Probe  FocusProbe
	Title  string
	Logger *slog.Logger
}

// Verify returns false only when the probe positively reports a different
// foreground window. The caller decides whether that aborts the run.
func (f *FocusCheck) Verify() bool {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if f.Probe == nil || f.Title == "" {
		return true
	}
	title, err := f.Probe.ForegroundTitle()
	if err != nil {
		logger.Warn("focus probe failed, continuing", "error", err)
		return true
	}
	if !strings.Contains(title, f.Title) {
		logger.Warn("target window not focused", "want", f.Title, "got", title)
		return false
	}
	return true
}
