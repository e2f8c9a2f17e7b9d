package safety

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProbe struct {
	title string
	err   error
}

func (p fakeProbe) ForegroundTitle() (string, error) {
	return p.title, p.err
}

func TestFocusCheck_MatchingTitle(t *testing.T) {
	check := &FocusCheck{Probe: fakeProbe{title: "ERP System - Orders"}, Title: "ERP System"}
	assert.True(t, check.Verify())
}

func TestFocusCheck_WrongWindow(t *testing.T) {
	check := &FocusCheck{Probe: fakeProbe{title: "Web Browser"}, Title: "ERP System"}
	assert.False(t, check.Verify())
}

func TestFocusCheck_FailsOpenOnProbeError(t *testing.T) {
	check := &FocusCheck{Probe: fakeProbe{err: errors.New("no display")}, Title: "ERP System"}
	assert.True(t, check.Verify())
}

func TestFocusCheck_FailsOpenWithoutProbe(t *testing.T) {
	check := &FocusCheck{Title: "ERP System"}
	assert.True(t, check.Verify())
}

func TestFocusCheck_FailsOpenWithoutTitle(t *testing.T) {
	check := &FocusCheck{Probe: fakeProbe{title: "anything"}}
	assert.True(t, check.Verify())
}
