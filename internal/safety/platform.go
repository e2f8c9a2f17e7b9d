package safety

import "sync"

var (
	platformMu    sync.Mutex
	platformKeys  func() (KeySource, error)
	platformFocus func() (FocusProbe, error)
)

// RegisterKeySource installs the OS-level global hotkey backend. Without
// one, runs fall back to signal-based stop only.
func RegisterKeySource(open func() (KeySource, error)) {
	platformMu.Lock()
	defer platformMu.Unlock()
	platformKeys = open
}

// OpenKeySource returns the registered hotkey backend, or ok=false when
// none is built in.
func OpenKeySource() (KeySource, bool, error) {
	platformMu.Lock()
	open := platformKeys
	platformMu.Unlock()

	if open == nil {
		return nil, false, nil
	}
	src, err := open()
	if err != nil {
		return nil, true, err
	}
	return src, true, nil
}

// RegisterFocusProbe installs the foreground-window probe.
func RegisterFocusProbe(open func() (FocusProbe, error)) {
	platformMu.Lock()
	defer platformMu.Unlock()
	platformFocus = open
}

// OpenFocusProbe returns the registered focus probe, or ok=false when none
// is built in. The focus check fails open in that case.
func OpenFocusProbe() (FocusProbe, bool, error) {
	platformMu.Lock()
	open := platformFocus
	platformMu.Unlock()

	if open == nil {
		return nil, false, nil
	}
	probe, err := open()
	if err != nil {
		return nil, true, err
	}
	return probe, true, nil
}
