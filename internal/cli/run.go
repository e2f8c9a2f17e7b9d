package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yhlin/autotyper/internal/actuate"
	"github.com/yhlin/autotyper/internal/config"
	"github.com/yhlin/autotyper/internal/engine"
	"github.com/yhlin/autotyper/internal/flowdef"
	"github.com/yhlin/autotyper/internal/ledger"
	"github.com/yhlin/autotyper/internal/progress"
	"github.com/yhlin/autotyper/internal/safety"
	"github.com/yhlin/autotyper/internal/source"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Flow     string
	DateFrom string
	DateTo   string
	DryRun   bool

	// Tokens overrides the run-token generator, for testing.
	Tokens engine.TokenGenerator
}

// RunSummary is the machine-readable result of a run.
type RunSummary struct {
	Flow    string `json:"flow"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
	Stopped bool   `json:"stopped"`
}

func (s RunSummary) String() string {
	out := fmt.Sprintf("%s: %d entered, %d failed, %d skipped (of %d pending)",
		s.Flow, s.Success, s.Failed, s.Skipped, s.Total)
	if s.Stopped {
		out += " [stopped by operator]"
	}
	return out
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run --flow <name>",
		Short: "Enter pending records into the target application",
		Long: `Fetch records for a flow, skip those the ledger already marks entered,
and type the rest into the target application one record at a time.

The pause hotkey suspends input at the next step boundary; the stop
hotkey (or a first Ctrl-C) ends the run cleanly after the step in
flight. A second Ctrl-C aborts immediately.

Example:
  autotyper run --flow assembly --from 2026-08-01 --to 2026-08-31
  autotyper run --flow packaging --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Flow, "flow", "", "flow name to run (required)")
	cmd.Flags().StringVar(&opts.DateFrom, "from", "", "inclusive lower bound on order_date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.DateTo, "to", "", "inclusive upper bound on order_date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "log the input stream instead of delivering it")
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}

func runFlow(opts *RunOptions, cmd *cobra.Command) error {
	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	flowCfg, def, err := resolveFlow(settings, opts.Flow)
	if err != nil {
		return err
	}

	if settings.Supabase.URL == "" {
		return NewExitError(ExitCommandError, "supabase.url is not configured")
	}
	client := source.NewClient(settings.Supabase.URL, settings.Supabase.AnonKey)

	led, err := openLedger(settings, client)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer func() {
		if closeErr := led.Close(); closeErr != nil {
			slog.Error("error closing ledger", "error", closeErr)
		}
	}()

	act, err := openActuator(opts.DryRun)
	if err != nil {
		return err
	}

	queue := progress.NewQueue()
	control := safety.NewController(func(state safety.State) {
		queue.Publish(progress.Event{Kind: progress.KindSafety, Message: state.String()})
	})

	if src, ok, err := safety.OpenKeySource(); err != nil {
		slog.Warn("hotkey backend failed, continuing without hotkeys", "error", err)
	} else if ok {
		unbind := safety.Bind(control, src, safety.Binding{
			Pause: settings.Safety.HotkeyPause,
			Stop:  settings.Safety.HotkeyStop,
		}, slog.Default())
		defer unbind()
	} else {
		slog.Info("no hotkey backend built in; use Ctrl-C to stop")
	}

	focus := focusCheck(settings, flowCfg)

	interp := engine.NewInterpreter(act, slog.Default(), engine.InterpreterOptions{
		ScreenshotsDir: settings.ScreenshotsDir,
		KeyInterval:    settings.Typing.KeyInterval(),
		Settle:         settings.Typing.Settle(),
		ImagePoll:      settings.Typing.ImagePoll(),
		ImageTimeout:   settings.Typing.ImageTimeout(),
	})

	runner := engine.NewRunner(engine.RunnerConfig{
		Source:      client,
		Ledger:      led,
		Interpreter: interp,
		Control:     control,
		Focus:       focus,
		Tokens:      opts.Tokens,
		Logger:      slog.Default(),
		Progress:    queue,
		Target:      settings.Ledger.Target,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			slog.Info("interrupt received, stopping after the step in flight")
			control.Stop()
		case <-ctx.Done():
			return
		}
		select {
		case <-sigChan:
			slog.Warn("second interrupt, aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	renderDone := make(chan struct{})
	go renderProgress(queue, cmd, renderDone)

	stats, runErr := runner.Run(ctx, def, opts.DateFrom, opts.DateTo)
	queue.Close()
	<-renderDone

	summary := RunSummary{
		Flow:    def.Name,
		Total:   stats.Total,
		Success: stats.Success,
		Failed:  stats.Failed,
		Skipped: stats.Skipped,
		Stopped: errors.Is(runErr, safety.ErrStopped),
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if runErr != nil && !summary.Stopped {
		_ = formatter.Error("E_RUN", runErr.Error(), summary)
		return WrapExitError(ExitCommandError, "run failed", runErr)
	}
	if err := formatter.Success(summary); err != nil {
		return err
	}
	if stats.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d records failed", stats.Failed))
	}
	return nil
}

// resolveFlow loads the configured flow definitions and picks one.
func resolveFlow(settings config.Settings, name string) (*flowdef.Config, flowdef.FlowDefinition, error) {
	var cfg *flowdef.Config
	if settings.FlowsFile != "" {
		loaded, warnings, err := flowdef.Load(settings.FlowsFile)
		if err != nil {
			return nil, flowdef.FlowDefinition{}, WrapExitError(ExitCommandError, "failed to load flow definitions", err)
		}
		for _, w := range warnings {
			slog.Warn(w)
		}
		cfg = loaded
	} else {
		cfg = flowdef.Builtin()
	}

	def, ok := cfg.Definition(name)
	if !ok {
		return nil, flowdef.FlowDefinition{}, NewExitError(ExitCommandError,
			fmt.Sprintf("unknown flow %q: available flows are %v", name, cfg.FlowNames()))
	}
	return cfg, def, nil
}

func openLedger(settings config.Settings, client *source.Client) (ledger.Ledger, error) {
	if settings.Ledger.Remote {
		return source.NewRemoteLedger(client), nil
	}
	return ledger.OpenSQLite(settings.Ledger.Path)
}

func openActuator(dryRun bool) (actuate.Actuator, error) {
	if dryRun {
		trace := actuate.NewTrace(slog.Default())
		trace.RealSleep = false
		return trace, nil
	}
	act, ok, err := actuate.OpenPlatform()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open input backend", err)
	}
	if !ok {
		return nil, NewExitError(ExitCommandError,
			"this build has no input backend; use --dry-run or a platform build")
	}
	return act, nil
}

func focusCheck(settings config.Settings, flowCfg *flowdef.Config) *safety.FocusCheck {
	if !settings.Safety.FocusCheck {
		return nil
	}
	title := flowCfg.WindowTitle
	if title == "" {
		title = settings.ERP.WindowTitle
	}
	probe, ok, err := safety.OpenFocusProbe()
	if err != nil {
		slog.Warn("focus probe backend failed, check disabled", "error", err)
	}
	if !ok || probe == nil {
		return &safety.FocusCheck{Title: title, Logger: slog.Default()}
	}
	return &safety.FocusCheck{Probe: probe, Title: title, Logger: slog.Default()}
}

// renderProgress drains the queue to stderr until it closes.
func renderProgress(queue *progress.Queue, cmd *cobra.Command, done chan<- struct{}) {
	defer close(done)
	w := cmd.ErrOrStderr()
	for {
		for {
			e, ok := queue.TryNext()
			if !ok {
				break
			}
			renderEvent(w, e)
		}
		if _, open := <-queue.Wait(); !open {
			// Drain whatever arrived between the last TryNext and close.
			for {
				e, ok := queue.TryNext()
				if !ok {
					return
				}
				renderEvent(w, e)
			}
		}
	}
}

func renderEvent(w io.Writer, e progress.Event) {
	switch e.Kind {
	case progress.KindRecord:
		fmt.Fprintf(w, "[%d/%d] %s\n", e.Current, e.Total, e.Message)
	case progress.KindSafety:
		fmt.Fprintf(w, "-- %s --\n", e.Message)
	default:
		fmt.Fprintf(w, "%s\n", e.Message)
	}
}
