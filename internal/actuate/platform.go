package actuate

import "sync"

var (
	platformMu sync.Mutex
	platform   func() (Actuator, error)
)

// RegisterPlatform installs the process's real input backend. Platform
// glue calls this from an init function behind its build tag; the CLI
// refuses live runs when no backend is registered.
func RegisterPlatform(open func() (Actuator, error)) {
	platformMu.Lock()
	defer platformMu.Unlock()
	platform = open
}

// OpenPlatform returns the registered input backend, or ok=false when the
// binary was built without one.
func OpenPlatform() (Actuator, bool, error) {
	platformMu.Lock()
	open := platform
	platformMu.Unlock()

	if open == nil {
		return nil, false, nil
	}
	act, err := open()
	if err != nil {
		return nil, true, err
	}
	return act, true, nil
}
