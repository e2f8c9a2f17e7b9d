package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yhlin/autotyper/internal/record"
	"github.com/yhlin/autotyper/internal/source"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Flow     string
	DateFrom string
	DateTo   string
}

// PreviewRow is one record in the preview listing.
type PreviewRow struct {
	RecordID string `json:"record_id"`
	OrderNo  string `json:"order_no"`
	Date     string `json:"order_date"`
	Items    int    `json:"items"`
	Status   string `json:"status"` // "pending" or "synced"
}

// PreviewResult is the machine-readable preview payload.
type PreviewResult struct {
	Flow    string       `json:"flow"`
	Total   int          `json:"total"`
	Pending int          `json:"pending"`
	Synced  int          `json:"synced"`
	Rows    []PreviewRow `json:"rows"`
}

func (r PreviewResult) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tITEMS\tSTATUS")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", row.OrderNo, row.Date, row.Items, row.Status)
	}
	tw.Flush()
	fmt.Fprintf(&b, "%s: %d records, %d pending, %d already synced",
		r.Flow, r.Total, r.Pending, r.Synced)
	return b.String()
}

// NewPreviewCommand creates the preview command. Preview fetches the same
// window a run would and reports what would be entered, without touching
// the target application.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "preview --flow <name>",
		Short:         "Show which records a run would enter",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewFlow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Flow, "flow", "", "flow name to preview (required)")
	cmd.Flags().StringVar(&opts.DateFrom, "from", "", "inclusive lower bound on order_date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.DateTo, "to", "", "inclusive upper bound on order_date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}

func previewFlow(opts *PreviewOptions, cmd *cobra.Command) error {
	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	_, def, err := resolveFlow(settings, opts.Flow)
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := client.Fetch(ctx, def, opts.DateFrom, opts.DateTo)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch records", err)
	}
	synced, err := led.SuccessfulIDs(ctx, def.Table, settings.Ledger.Target)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	result := PreviewResult{Flow: def.Name, Total: len(records)}
	for _, rec := range records {
		row := PreviewRow{
			RecordID: rec.ID,
			OrderNo:  record.Resolve(rec.Fields, "order_no"),
			Date:     record.Resolve(rec.Fields, "order_date"),
			Items:    len(rec.Items),
			Status:   "pending",
		}
		if _, ok := synced[rec.ID]; ok {
			row.Status = "synced"
			result.Synced++
		} else {
			result.Pending++
		}
		result.Rows = append(result.Rows, row)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return formatter.Success(result)
}
