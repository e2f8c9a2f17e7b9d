package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yhlin/autotyper/internal/actuate"
	"github.com/yhlin/autotyper/internal/flowdef"
	"github.com/yhlin/autotyper/internal/record"
)

// Interpreter executes single DSL steps against a field context. It is
// stateless across steps and performs no safety checks itself; the caller
// gates every step before handing it over.
type Interpreter struct {
	act            actuate.Actuator
	logger         *slog.Logger
	screenshotsDir string
	keyInterval    time.Duration
	tabInterval    time.Duration
	settle         time.Duration
	imagePoll      time.Duration
	imageTimeout   time.Duration
}

// InterpreterOptions tune typing pace and template-locate patience. Zero
// values take the defaults noted per field.
type InterpreterOptions struct {
	ScreenshotsDir string
	KeyInterval    time.Duration // per-keystroke delay, default 30ms
	TabInterval    time.Duration // per-tab-press delay, default 50ms
	Settle         time.Duration // post-action delay, default 200ms
	ImagePoll      time.Duration // locate retry interval, default 500ms
	ImageTimeout   time.Duration // locate give-up, default 10s
}

// NewInterpreter builds an interpreter over an actuator.
func NewInterpreter(act actuate.Actuator, logger *slog.Logger, opts InterpreterOptions) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.KeyInterval <= 0 {
		opts.KeyInterval = 30 * time.Millisecond
	}
	if opts.TabInterval <= 0 {
		opts.TabInterval = 50 * time.Millisecond
	}
	if opts.Settle <= 0 {
		opts.Settle = 200 * time.Millisecond
	}
	if opts.ImagePoll <= 0 {
		opts.ImagePoll = 500 * time.Millisecond
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = 10 * time.Second
	}
	return &Interpreter{
		act:            act,
		logger:         logger,
		screenshotsDir: opts.ScreenshotsDir,
		keyInterval:    opts.KeyInterval,
		tabInterval:    opts.TabInterval,
		settle:         opts.Settle,
		imagePoll:      opts.ImagePoll,
		imageTimeout:   opts.ImageTimeout,
	}
}

// Execute runs one step against the field context. Steps with an
// unrecognized action are logged and skipped so a bad definition degrades
// instead of aborting mid-record.
func (in *Interpreter) Execute(step flowdef.Step, fields record.Fields) error {
	switch step.Action {
	case flowdef.ActionClickAndType:
		return in.clickAndType(step, fields)
	case flowdef.ActionTabAndType:
		return in.tabAndType(step, fields)
	case flowdef.ActionScreenshotClick:
		return in.screenshotClick(step)
	case flowdef.ActionPressKey:
		if err := in.act.Press(step.Key); err != nil {
			return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
		}
		in.act.Sleep(in.settle)
		return nil
	case flowdef.ActionWait:
		in.act.Sleep(time.Duration(step.Seconds * float64(time.Second)))
		return nil
	default:
		in.logger.Warn("skipping unrecognized action", "action", string(step.Action), "desc", step.Desc)
		return nil
	}
}

func (in *Interpreter) clickAndType(step flowdef.Step, fields record.Fields) error {
	if err := in.act.Click(step.X, step.Y); err != nil {
		return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
	}
	in.act.Sleep(in.settle)
	// Select any existing content so typing replaces it.
	if err := in.act.Hotkey("ctrl", "a"); err != nil {
		return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
	}
	if err := in.typeResolved(step, fields); err != nil {
		return err
	}
	in.act.Sleep(in.settle)
	return nil
}

func (in *Interpreter) tabAndType(step flowdef.Step, fields record.Fields) error {
	// Each tab gets its own short delay so focus has moved before the next
	// press; unsettled rapid tabs can under-advance and land text in the
	// wrong field.
	for i := 0; i < step.Tabs; i++ {
		if err := in.act.Press("tab"); err != nil {
			return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
		}
		in.act.Sleep(in.tabInterval)
	}
	if err := in.typeResolved(step, fields); err != nil {
		return err
	}
	in.act.Sleep(in.settle)
	return nil
}

// typeResolved resolves the step's field and delivers the text. ASCII goes
// out as keystrokes; anything else goes through the clipboard, because
// keystroke synthesis cannot produce characters outside the basic layout.
func (in *Interpreter) typeResolved(step flowdef.Step, fields record.Fields) error {
	text := record.Resolve(fields, step.Field)
	if text == "" {
		in.logger.Debug("field resolved empty", "field", step.Field, "desc", step.Desc)
		return nil
	}
	if isASCII(text) {
		if err := in.act.TypeText(text, in.keyInterval); err != nil {
			return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
		}
		return nil
	}
	if err := in.act.WriteClipboard(text); err != nil {
		return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
	}
	if err := in.act.Hotkey("ctrl", "v"); err != nil {
		return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
	}
	return nil
}

// screenshotClick polls for the template until it appears or the timeout
// lapses. Locate errors count as not-found: a transient capture failure
// should not kill the attempt while time remains.
func (in *Interpreter) screenshotClick(step flowdef.Step) error {
	path := step.Image
	if in.screenshotsDir != "" {
		path = in.screenshotsDir + "/" + step.Image
	}

	attempts := int(in.imageTimeout / in.imagePoll)
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if i > 0 {
			in.act.Sleep(in.imagePoll)
		}
		region, found, err := in.act.LocateImage(path, step.Confidence)
		if err != nil {
			in.logger.Debug("image locate error", "image", step.Image, "error", err)
			continue
		}
		if found {
			x, y := region.Center()
			dx, dy := step.OffsetXY()
			if err := in.act.Click(x+dx, y+dy); err != nil {
				return &StepError{Action: step.Action, Desc: step.Desc, Err: err}
			}
			in.act.Sleep(in.settle)
			return nil
		}
	}
	return &StepError{
		Action: step.Action,
		Desc:   step.Desc,
		Err:    fmt.Errorf("%w: %s after %s", ErrNoImageMatch, step.Image, in.imageTimeout),
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
