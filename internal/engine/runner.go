// Package engine drives flow execution: it fetches the record window,
// filters already-synced records against the ledger, and enters the rest
// one record at a time through the step interpreter.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yhlin/autotyper/internal/flowdef"
	"github.com/yhlin/autotyper/internal/ledger"
	"github.com/yhlin/autotyper/internal/progress"
	"github.com/yhlin/autotyper/internal/record"
	"github.com/yhlin/autotyper/internal/safety"
)

// RecordSource yields the records a flow definition names, in the order
// they should be entered.
type RecordSource interface {
	Fetch(ctx context.Context, def flowdef.FlowDefinition, dateFrom, dateTo string) ([]record.Record, error)
}

// RunStats summarizes one run. Skipped counts records in the fetched
// window that the ledger already marks successful.
type RunStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Runner executes flows. One runner admits one run at a time; a second
// Run while the first is active returns ErrAlreadyRunning.
type Runner struct {
	source   RecordSource
	ledger   ledger.Ledger
	interp   *Interpreter
	control  *safety.Controller
	focus    *safety.FocusCheck
	tokens   TokenGenerator
	logger   *slog.Logger
	progress *progress.Queue
	target   string

	mu      sync.Mutex
	running bool
}

// RunnerConfig wires a Runner. Source, Ledger, Interpreter and Control are
// required; the rest default sensibly.
type RunnerConfig struct {
	Source      RecordSource
	Ledger      ledger.Ledger
	Interpreter *Interpreter
	Control     *safety.Controller
	Focus       *safety.FocusCheck
	Tokens      TokenGenerator
	Logger      *slog.Logger
	Progress    *progress.Queue
	Target      string
}

// NewRunner builds a Runner from the config.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Tokens == nil {
		cfg.Tokens = UUIDv7Generator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Target == "" {
		cfg.Target = ledger.DefaultTarget
	}
	return &Runner{
		source:   cfg.Source,
		ledger:   cfg.Ledger,
		interp:   cfg.Interpreter,
		control:  cfg.Control,
		focus:    cfg.Focus,
		tokens:   cfg.Tokens,
		logger:   cfg.Logger,
		progress: cfg.Progress,
		target:   cfg.Target,
	}
}

// Run executes one flow over the date window and returns per-record
// outcome counts. Records are processed strictly in fetch order, one at a
// time. A stop request ends the run early with safety.ErrStopped; the
// stats cover what completed before the stop.
func (r *Runner) Run(ctx context.Context, def flowdef.FlowDefinition, dateFrom, dateTo string) (RunStats, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return RunStats{}, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	token := r.tokens.Generate()
	logger := r.logger.With("flow", def.Name, "run_token", token)

	r.publish(progress.Event{Kind: progress.KindStatus, Message: "fetching records"})
	records, err := r.source.Fetch(ctx, def, dateFrom, dateTo)
	if err != nil {
		return RunStats{}, fmt.Errorf("fetch %s: %w", def.Table, err)
	}

	// Dedup is fail-closed: with the ledger unreadable we cannot know what
	// was already entered, and double entry is worse than no entry.
	synced, err := r.ledger.SuccessfulIDs(ctx, def.Table, r.target)
	if err != nil {
		return RunStats{}, fmt.Errorf("read ledger for %s: %w", def.Table, err)
	}

	var pending []record.Record
	for _, rec := range records {
		if _, ok := synced[rec.ID]; ok {
			continue
		}
		pending = append(pending, rec)
	}

	stats := RunStats{
		Total:   len(pending),
		Skipped: len(records) - len(pending),
	}
	logger.Info("run starting",
		"fetched", len(records),
		"pending", stats.Total,
		"skipped", stats.Skipped,
	)

	if len(pending) == 0 {
		r.publish(progress.Event{Kind: progress.KindStatus, Message: "nothing to enter"})
		return stats, nil
	}

	if r.focus != nil && !r.focus.Verify() {
		return stats, fmt.Errorf("target window %q is not focused", r.focus.Title)
	}

	// Teardown runs exactly once, even when the loop is cut short by a
	// stop or a mid-record interruption.
	defer r.teardown(def, logger)
	for _, step := range def.SetupSteps {
		if err := r.control.Check(ctx); err != nil {
			return stats, err
		}
		if err := r.interp.Execute(step, nil); err != nil {
			return stats, fmt.Errorf("flow setup: %w", err)
		}
	}

	for i, rec := range pending {
		if err := r.control.Check(ctx); err != nil {
			logger.Info("run interrupted before record", "record", rec.Label(), "reason", err)
			r.publish(progress.Event{
				Kind:    progress.KindStatus,
				Current: i,
				Total:   stats.Total,
				Message: fmt.Sprintf("stopped after %d/%d", i, stats.Total),
			})
			return stats, err
		}

		var message string
		err := r.processRecord(ctx, def, rec)
		switch {
		case err == nil:
			stats.Success++
			r.append(ctx, logger, ledger.Entry{
				Table:    def.Table,
				RecordID: rec.ID,
				Target:   r.target,
				Status:   ledger.StatusSuccess,
				RunToken: token,
			})
			logger.Info("record entered", "record", rec.Label(), "n", i+1, "of", stats.Total)
			message = "[OK] " + rec.Label()
		case errors.Is(err, safety.ErrStopped), errors.Is(err, context.Canceled):
			// Interrupted mid-record: the entry is incomplete, so no
			// ledger row is written and the record stays eligible.
			logger.Info("run interrupted mid-record", "record", rec.Label(), "reason", err)
			r.publish(progress.Event{
				Kind:    progress.KindStatus,
				Current: i,
				Total:   stats.Total,
				Message: fmt.Sprintf("stopped after %d/%d", i, stats.Total),
			})
			return stats, err
		default:
			stats.Failed++
			r.append(ctx, logger, ledger.Entry{
				Table:    def.Table,
				RecordID: rec.ID,
				Target:   r.target,
				Status:   ledger.StatusFailed,
				Error:    err.Error(),
				RunToken: token,
			})
			logger.Error("record failed", "record", rec.Label(), "error", err)
			message = "[ERR] " + rec.Label() + ": " + err.Error()
		}

		r.publish(progress.Event{
			Kind:    progress.KindRecord,
			Current: i + 1,
			Total:   stats.Total,
			Message: message,
		})
	}

	logger.Info("run finished",
		"success", stats.Success,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// processRecord enters one record: header steps, item steps per line item,
// then the save step. Every step is gated on the safety controller so a
// pause or stop lands between steps, never inside one.
func (r *Runner) processRecord(ctx context.Context, def flowdef.FlowDefinition, rec record.Record) error {
	header := rec.WithAliases(def.HeaderAliases)

	for _, step := range def.HeaderSteps {
		if err := r.control.Check(ctx); err != nil {
			return err
		}
		if err := r.interp.Execute(step, header); err != nil {
			return err
		}
	}

	for _, item := range rec.Items {
		for _, step := range def.ItemSteps {
			if err := r.control.Check(ctx); err != nil {
				return err
			}
			if err := r.interp.Execute(step, item); err != nil {
				return err
			}
		}
	}

	if def.SaveStep != nil {
		if err := r.control.Check(ctx); err != nil {
			return err
		}
		if err := r.interp.Execute(*def.SaveStep, header); err != nil {
			return err
		}
	}
	return nil
}

// teardown executes the flow's teardown steps best effort. It is not
// gated on the safety controller: a stopped run still gets its teardown.
func (r *Runner) teardown(def flowdef.FlowDefinition, logger *slog.Logger) {
	for _, step := range def.TeardownSteps {
		if err := r.interp.Execute(step, nil); err != nil {
			logger.Warn("teardown step failed", "error", err)
		}
	}
}

// append writes a ledger entry, logging instead of failing: an unreachable
// ledger after the keystrokes went out must not abort the remaining
// records. The worst case is a re-entry attempt next run, which the save
// failure surfaces in the target application.
func (r *Runner) append(ctx context.Context, logger *slog.Logger, e ledger.Entry) {
	if err := r.ledger.Append(ctx, e); err != nil {
		logger.Warn("ledger append failed", "record", e.RecordID, "status", e.Status, "error", err)
	}
}

func (r *Runner) publish(e progress.Event) {
	if r.progress != nil {
		r.progress.Publish(e)
	}
}
