package cmd

import (
	"github.com/spf13/cobra"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/session"
)

func CreateSession() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "create-session [flags] [path]",
			Short: "Prepare the session recorded in the parameters",
			Long: `Create the session directory recorded in the params_simul.xml of path
(default: current directory), write SESSION.NAME, link the mesh files and
copy the par file into it.

Example:
  snekctl create-session --case phill ~/sims/phill_run
`,
			Args: cobra.MaximumNArgs(1),
		}, createSessionFlags, runCreateSession,
	)
}

var createSessionFlags = []commandLineFlag{caseFlag}

func runCreateSession(ctx *Context, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	runDir, err := fileutil.ResolvePath(dir)
	if err != nil {
		return err
	}

	p, err := params.Load(runDir)
	if err != nil {
		return err
	}

	caseName, err := ctx.StringParam(caseFlag.name)
	if err != nil {
		return err
	}
	if caseName == "" {
		caseName = p.Solver
	}
	if caseName == "" {
		if caseName, err = params.SolverShortName(runDir); err != nil {
			return err
		}
	}

	return session.Create(ctx, runDir, p.SessionPath(runDir), sessionFiles(runDir, caseName, p.ParFile()))
}
