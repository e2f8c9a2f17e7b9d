package safety

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/autotyper/internal/testutil"
)

func TestBind_PauseAndStopKeys(t *testing.T) {
	c := NewController(nil)
	keys := testutil.NewScriptedKeys()
	unbind := Bind(c, keys, DefaultBinding(), nil)
	defer unbind()

	keys.Press("f9")
	require.Eventually(t, func() bool {
		return c.State() == StatePaused
	}, time.Second, 5*time.Millisecond, "pause key should pause")

	keys.Press("f9")
	require.Eventually(t, func() bool {
		return c.State() == StateRunning
	}, time.Second, 5*time.Millisecond, "pause key should resume")

	keys.Press("f10")
	require.Eventually(t, func() bool {
		return c.State() == StateStopped
	}, time.Second, 5*time.Millisecond, "stop key should stop")
}

func TestBind_IgnoresUnboundKeys(t *testing.T) {
	c := NewController(nil)
	keys := testutil.NewScriptedKeys()
	unbind := Bind(c, keys, DefaultBinding(), nil)

	keys.Press("f1")
	keys.Press("escape")
	unbind()

	assert.Equal(t, StateRunning, c.State())
}

func TestBind_UnbindIsIdempotent(t *testing.T) {
	c := NewController(nil)
	keys := testutil.NewScriptedKeys()
	unbind := Bind(c, keys, DefaultBinding(), nil)

	unbind()
	unbind()
}
