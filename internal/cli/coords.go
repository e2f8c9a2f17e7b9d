package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yhlin/autotyper/internal/actuate"
)

// CoordsOptions holds flags for the coords command.
type CoordsOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewCoordsCommand creates the coords helper. It samples the pointer once
// a second and prints the position whenever it moves, so an operator can
// capture the click coordinates a flow definition needs.
func NewCoordsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoordsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "coords",
		Short:         "Print the pointer position for coordinate capture",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return trackCoords(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "sampling interval")

	return cmd
}

func trackCoords(opts *CoordsOptions, cmd *cobra.Command) error {
	act, ok, err := actuate.OpenPlatform()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open input backend", err)
	}
	if !ok {
		return NewExitError(ExitCommandError, "this build has no input backend")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Move the pointer over each target control; Ctrl-C to quit.")
	return streamCoords(ctx, act, cmd.OutOrStdout(), opts.Interval)
}

// streamCoords samples the pointer on every tick and prints the position
// only when it changed since the last sample, so a stationary pointer does
// not scroll its coordinates off the screen.
func streamCoords(ctx context.Context, act actuate.Actuator, w io.Writer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastX, lastY int
	first := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			x, y := act.PointerPosition()
			if !first && x == lastX && y == lastY {
				continue
			}
			first = false
			lastX, lastY = x, y
			fmt.Fprintf(w, "x=%d y=%d\n", x, y)
		}
	}
}
