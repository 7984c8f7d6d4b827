package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
)

func NextPath() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "next-path [flags] <path>",
			Short: "Print the next free path with a numeric suffix",
			Long: `Print a path derived from <path> that does not exist yet, appending _00, _01,
... before the extensions until a free name is found. Nothing is created.

Example:
  snekctl next-path session          # session, or session_00 if it exists
  snekctl next-path --force-suffix out.tar.gz
`,
			Args: cobra.ExactArgs(1),
		}, nextPathFlags, runNextPath,
	)
}

var nextPathFlags = []commandLineFlag{forceSuffixFlag}

func runNextPath(ctx *Context, args []string) error {
	forceSuffix, err := ctx.BoolParam(forceSuffixFlag.name)
	if err != nil {
		return err
	}

	_, path, err := fileutil.NextPath(args[0], forceSuffix)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Command.OutOrStdout(), path)
	return err
}
