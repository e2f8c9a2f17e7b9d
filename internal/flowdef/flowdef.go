// Package flowdef holds the declarative flow definitions: the per-field
// step lists that describe how one record kind is entered into the target
// application. Definitions are pure data; the engine interprets them.
package flowdef

// Action identifies one step kind in the entry DSL.
type Action string

const (
	// ActionClickAndType moves to fixed coordinates, clicks, clears the
	// field, and types the resolved text.
	ActionClickAndType Action = "click_and_type"
	// ActionTabAndType advances focus with tab presses, then types.
	ActionTabAndType Action = "tab_and_type"
	// ActionScreenshotClick locates a template image on screen and clicks
	// at its center plus an offset.
	ActionScreenshotClick Action = "screenshot_click"
	// ActionPressKey presses a single named key.
	ActionPressKey Action = "press_key"
	// ActionWait sleeps to let the target UI settle.
	ActionWait Action = "wait"
)

// Known reports whether the action is one of the five recognized kinds.
// Unknown actions are tolerated at run time (logged and skipped) so a
// malformed definition cannot crash an in-progress run.
func (a Action) Known() bool {
	switch a {
	case ActionClickAndType, ActionTabAndType, ActionScreenshotClick,
		ActionPressKey, ActionWait:
		return true
	}
	return false
}

// Step is one stateless DSL instruction. It is evaluated against a field
// context (record header or line item) at execution time.
type Step struct {
	Action     Action  `yaml:"action" json:"action"`
	Field      string  `yaml:"field,omitempty" json:"field,omitempty"`
	X          int     `yaml:"x,omitempty" json:"x,omitempty"`
	Y          int     `yaml:"y,omitempty" json:"y,omitempty"`
	Tabs       int     `yaml:"tabs,omitempty" json:"tabs,omitempty"`
	Image      string  `yaml:"image,omitempty" json:"image,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Offset     []int   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Key        string  `yaml:"key,omitempty" json:"key,omitempty"`
	Seconds    float64 `yaml:"seconds,omitempty" json:"seconds,omitempty"`
	Desc       string  `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// FlowDefinition describes one record kind: where its rows come from and
// the step lists that enter one row.
//
// HeaderSteps run once per record against the record header; ItemSteps run
// once per line item, per item, in list order; SaveStep (if present) runs
// once per record after all items, against the header.
type FlowDefinition struct {
	Name          string            `yaml:"-" json:"name"`
	Table         string            `yaml:"table_name" json:"table_name"`
	ItemsField    string            `yaml:"items_field" json:"items_field"`
	Select        string            `yaml:"select,omitempty" json:"select,omitempty"`
	ApprovedOnly  *bool             `yaml:"approved_only,omitempty" json:"approved_only,omitempty"`
	HeaderAliases map[string]string `yaml:"header_aliases,omitempty" json:"header_aliases,omitempty"`
	SetupSteps    []Step            `yaml:"setup_steps,omitempty" json:"setup_steps,omitempty"`
	HeaderSteps   []Step            `yaml:"steps" json:"steps"`
	ItemSteps     []Step            `yaml:"item_steps" json:"item_steps"`
	SaveStep      *Step             `yaml:"save_step,omitempty" json:"save_step,omitempty"`
	TeardownSteps []Step            `yaml:"teardown_steps,omitempty" json:"teardown_steps,omitempty"`
}

// Approved reports whether the fetch should be restricted to approved
// records. Unset defaults to true: only approved orders are typed.
func (d *FlowDefinition) Approved() bool {
	if d.ApprovedOnly == nil {
		return true
	}
	return *d.ApprovedOnly
}

// Config is the top of a flow-definition file: shared target-window
// settings plus the named flows.
type Config struct {
	WindowTitle string                    `yaml:"window_title" json:"window_title"`
	Flows       map[string]FlowDefinition `yaml:"flows" json:"flows"`
}

// Definition returns the named flow with its Name field set.
func (c *Config) Definition(name string) (FlowDefinition, bool) {
	def, ok := c.Flows[name]
	if !ok {
		return FlowDefinition{}, false
	}
	def.Name = name
	return def, true
}

// normalize applies the DSL defaults in one pass so the engine never has
// to guess at missing values: tabs>=1, confidence 0.9, key "enter",
// wait 0.5s.
func (s *Step) normalize() {
	switch s.Action {
	case ActionTabAndType:
		if s.Tabs < 1 {
			s.Tabs = 1
		}
	case ActionScreenshotClick:
		if s.Confidence <= 0 {
			s.Confidence = 0.9
		}
	case ActionPressKey:
		if s.Key == "" {
			s.Key = "enter"
		}
	case ActionWait:
		if s.Seconds <= 0 {
			s.Seconds = 0.5
		}
	}
}

// OffsetXY returns the click offset, defaulting to (0,0).
func (s *Step) OffsetXY() (int, int) {
	if len(s.Offset) >= 2 {
		return s.Offset[0], s.Offset[1]
	}
	return 0, 0
}

func (d *FlowDefinition) normalize(name string) {
	d.Name = name
	for _, steps := range [][]Step{d.SetupSteps, d.HeaderSteps, d.ItemSteps, d.TeardownSteps} {
		for i := range steps {
			steps[i].normalize()
		}
	}
	if d.SaveStep != nil {
		d.SaveStep.normalize()
	}
}

// UnknownActions lists the actions in this definition that are not part of
// the recognized set, in step order. These are warnings, not errors.
func (d *FlowDefinition) UnknownActions() []string {
	var out []string
	collect := func(steps []Step) {
		for _, s := range steps {
			if !s.Action.Known() {
				out = append(out, string(s.Action))
			}
		}
	}
	collect(d.SetupSteps)
	collect(d.HeaderSteps)
	collect(d.ItemSteps)
	if d.SaveStep != nil && !d.SaveStep.Action.Known() {
		out = append(out, string(d.SaveStep.Action))
	}
	collect(d.TeardownSteps)
	return out
}
