package testutil

import "sync"

// ScriptedKeys is a safety.KeySource fed by tests.
type ScriptedKeys struct {
	once   sync.Once
	events chan string
}

// NewScriptedKeys returns a key source with room for a few queued presses.
func NewScriptedKeys() *ScriptedKeys {
	return &ScriptedKeys{events: make(chan string, 16)}
}

// Press queues one key press.
func (s *ScriptedKeys) Press(key string) {
	s.events <- key
}

func (s *ScriptedKeys) Events() <-chan string {
	return s.events
}

func (s *ScriptedKeys) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}
