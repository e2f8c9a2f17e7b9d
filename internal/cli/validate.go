package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yhlin/autotyper/internal/flowdef"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult is the machine-readable validation payload.
type ValidateResult struct {
	File     string                    `json:"file"`
	Valid    bool                      `json:"valid"`
	Flows    []string                  `json:"flows,omitempty"`
	Warnings []string                  `json:"warnings,omitempty"`
	Errors   []flowdef.ValidationError `json:"errors,omitempty"`
}

func (r ValidateResult) String() string {
	if !r.Valid {
		out := fmt.Sprintf("%s: invalid", r.File)
		for _, e := range r.Errors {
			out += "\n  " + e.Error()
		}
		return out
	}
	out := fmt.Sprintf("%s: valid (%d flows)", r.File, len(r.Flows))
	for _, w := range r.Warnings {
		out += "\n  warning: " + w
	}
	return out
}

// NewValidateCommand creates the validate command. It checks a
// flow-definition file against the schema without contacting the data
// store or the target application.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "validate <flows-file>",
		Short:         "Check a flow-definition file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFlows(opts, args[0], cmd)
		},
	}

	return cmd
}

func validateFlows(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flow definitions", err)
	}

	if verrs := flowdef.Validate(data, path); len(verrs) > 0 {
		result := ValidateResult{File: path, Errors: verrs}
		if err := formatter.Success(result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation errors", len(verrs)))
	}

	cfg, warnings, err := flowdef.Parse(data, path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse flow definitions", err)
	}

	result := ValidateResult{
		File:     path,
		Valid:    true,
		Flows:    cfg.FlowNames(),
		Warnings: warnings,
	}
	return formatter.Success(result)
}
