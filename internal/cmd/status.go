package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/snek5000/snekctl/internal/output"
	"github.com/snek5000/snekctl/internal/restart"
	"github.com/snek5000/snekctl/internal/simdir"
)

func Status() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "status [flags] [path...]",
			Short: "Report whether simulations can be restarted",
			Long: `Inspect simulation directories (default: current directory) and report the
status code of each one.

  200 OK               restartable from a multi-file checkpoint
  205 RESET_CONTENT    checkpoints and field files in the current session
  206 PARTIAL_CONTENT  field files but no checkpoint
  404 NOT_FOUND        SIZE and/or nek5000 missing
  423 LOCKED           locked by snakemake
  425 TOO_EARLY        snakemake was never executed

The command fails when any directory is in a blocking status (4xx).

Example:
  snekctl status -o json ~/sims/phill_run*
`,
			Args: cobra.ArbitraryArgs,
		}, statusFlags, runStatus,
	)
}

// ErrBlocked is returned by status when a directory cannot be restarted.
var ErrBlocked = errors.New("simulation cannot be restarted")

var statusFlags = []commandLineFlag{sessionIDFlag, formatFlag, verboseFlag}

func runStatus(ctx *Context, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	format, err := ctx.StringParam(formatFlag.name)
	if err != nil {
		return err
	}
	outFormat, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	sessionID, err := ctx.IntParam(sessionIDFlag.name)
	if err != nil {
		return err
	}
	verbose, err := ctx.BoolParam(verboseFlag.name)
	if err != nil {
		return err
	}

	out := ctx.Command.OutOrStdout()
	opts := []simdir.Option{simdir.WithMarkers(ctx.Config.Inspect.Markers...)}
	if sessionID != nil {
		opts = append(opts, simdir.WithSessionID(*sessionID))
	}
	if verbose {
		opts = append(opts, simdir.WithVerbose(out))
	}

	records := make([]output.Record, 0, len(args))
	var blocked []string
	for _, arg := range args {
		dir, err := restart.ResolvePath(arg, ctx.Config.Paths.SimulationsDir)
		if err != nil {
			return err
		}
		status, err := simdir.Inspect(ctx, dir, opts...)
		if err != nil {
			return err
		}
		records = append(records, output.NewRecord(dir, status))
		if status.IsBlocking() {
			blocked = append(blocked, dir)
		}
	}

	cfg := output.Config{
		Format:       outFormat,
		ColorEnabled: out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())),
	}
	if err := output.Write(out, records, cfg); err != nil {
		return err
	}

	return blockedError(blocked)
}

func blockedError(dirs []string) error {
	if len(dirs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBlocked, strings.Join(dirs, ", "))
}
