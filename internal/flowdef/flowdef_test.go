package flowdef

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_NormalizeDefaults(t *testing.T) {
	tab := Step{Action: ActionTabAndType, Field: "quantity"}
	tab.normalize()
	assert.Equal(t, 1, tab.Tabs)

	shot := Step{Action: ActionScreenshotClick, Image: "save.png"}
	shot.normalize()
	assert.Equal(t, 0.9, shot.Confidence)

	press := Step{Action: ActionPressKey}
	press.normalize()
	assert.Equal(t, "enter", press.Key)

	wait := Step{Action: ActionWait}
	wait.normalize()
	assert.Equal(t, 0.5, wait.Seconds)
}

func TestStep_NormalizeKeepsExplicitValues(t *testing.T) {
	tab := Step{Action: ActionTabAndType, Tabs: 3}
	tab.normalize()
	assert.Equal(t, 3, tab.Tabs)

	shot := Step{Action: ActionScreenshotClick, Image: "x.png", Confidence: 0.75}
	shot.normalize()
	assert.Equal(t, 0.75, shot.Confidence)
}

func TestStep_OffsetXY(t *testing.T) {
	s := Step{Offset: []int{10, -5}}
	x, y := s.OffsetXY()
	assert.Equal(t, 10, x)
	assert.Equal(t, -5, y)

	none := Step{}
	x, y = none.OffsetXY()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestAction_Known(t *testing.T) {
	assert.True(t, Action("click_and_type").Known())
	assert.True(t, Action("wait").Known())
	assert.False(t, Action("double_click").Known())
}

func TestConfig_Definition(t *testing.T) {
	cfg := Builtin()

	def, ok := cfg.Definition("assembly")
	require.True(t, ok)
	assert.Equal(t, "assembly", def.Name)
	assert.Equal(t, "assembly_orders", def.Table)

	_, ok = cfg.Definition("nonexistent")
	assert.False(t, ok)
}

func TestFlowDefinition_ApprovedDefaultsTrue(t *testing.T) {
	def := FlowDefinition{}
	assert.True(t, def.Approved())

	no := false
	def.ApprovedOnly = &no
	assert.False(t, def.Approved())
}

func TestConfig_FlowNames(t *testing.T) {
	cfg := Builtin()
	assert.Equal(t, []string{"assembly", "packaging"}, cfg.FlowNames())
}

func TestFlowDefinition_UnknownActions(t *testing.T) {
	def := FlowDefinition{
		HeaderSteps: []Step{
			{Action: ActionClickAndType, X: 1, Y: 2},
			{Action: "double_click"},
		},
		ItemSteps: []Step{{Action: "hover"}},
	}

	assert.Equal(t, []string{"double_click", "hover"}, def.UnknownActions())
}

// The builtin definitions are the documented baseline; the golden file
// pins their normalized form.
func TestBuiltin_Golden(t *testing.T) {
	cfg := Builtin()

	data, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "builtin_flows", data)
}
