package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snek5000/snekctl/internal/cmn/config"
	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/cmn/logger/tag"
	"github.com/snek5000/snekctl/internal/restart"
	"github.com/snek5000/snekctl/internal/session"
	"github.com/snek5000/snekctl/internal/solver"
)

func Restart() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "restart [flags] [path]",
			Short: "Restart a simulation in a new session",
			Long: `Restart the simulation stored in path (default: current directory) in a new
session directory.

The directory is inspected first and the restart is refused when it is locked
by snakemake, was never run or lacks the compiled case. The restart source is
either a field file of the previous session (--use-start-from) or a multi-file
checkpoint (--use-checkpoint). Without either, the checkpoint set configured
as restart.default_checkpoint is used; set it to 0 to start afresh.

A relative path that does not exist is looked up in the simulations
directory ($FLUIDSIM_PATH or paths.simulations_dir).

Example:
  snekctl restart --use-checkpoint 2 --add-to-end-time 5 ~/sims/phill_run
  snekctl restart --use-start-from phill0.f00010 --only-init phill_run/session_01
`,
			Args: cobra.MaximumNArgs(1),
		}, restartFlags, runRestart,
	)
}

var restartFlags = []commandLineFlag{
	nbMpiProcsFlag,
	useStartFromFlag,
	useCheckpointFlag,
	sessionIDFlag,
	skipVerifyFlag,
	addToEndTimeFlag,
	endTimeFlag,
	numStepsFlag,
	onlyInitFlag,
}

func runRestart(ctx *Context, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	opts, err := restartOptions(ctx)
	if err != nil {
		return err
	}
	stepping, err := timeStepping(ctx)
	if err != nil {
		return err
	}
	if err := stepping.Validate(); err != nil {
		return err
	}
	nproc, err := ctx.IntParam(nbMpiProcsFlag.name)
	if err != nil {
		return err
	}
	if nproc == nil {
		nproc = &ctx.Config.Restart.NbMpiProcs
	}
	if *nproc < 1 {
		return fmt.Errorf("invalid number of MPI processes: %d", *nproc)
	}
	onlyInit, err := ctx.BoolParam(onlyInitFlag.name)
	if err != nil {
		return err
	}

	loader := &restart.Loader{
		Registry:       ctx.SolverRegistry(),
		SimulationsDir: ctx.Config.Paths.SimulationsDir,
		Markers:        ctx.Config.Inspect.Markers,
	}
	p, class, err := loader.Load(ctx, dir, opts)
	if err != nil {
		return err
	}

	newSession := p.Output.PathSession
	runDir := filepath.Dir(newSession)

	runID, err := genRunID()
	if err != nil {
		return fmt.Errorf("failed to generate run ID: %w", err)
	}
	logFile, err := os.OpenFile(
		filepath.Join(newSession, fmt.Sprintf("%s-restart-%s.log", config.AppSlug, runID)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600,
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	ctx.LogToFile(logFile)
	ctx.Context = logger.WithValues(ctx.Context, "run-id", runID)

	if err := stepping.Apply(p); err != nil {
		return err
	}

	sim, err := class.New(ctx, runDir, p)
	if err != nil {
		return fmt.Errorf("failed to initialize simulation: %w", err)
	}
	caseName := p.Solver
	if caseName == "" {
		caseName = class.Name
	}
	if err := session.Create(ctx, runDir, newSession, sessionFiles(runDir, caseName, p.ParFile())); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if onlyInit {
		logger.Info(ctx, "Restart prepared, solver not launched", tag.Session(newSession))
		return nil
	}

	target := ctx.Config.Restart.Target
	logger.Info(ctx, "Launching solver", tag.Solver(class.Name), tag.Target(target), tag.Procs(*nproc))
	return sim.Exec(ctx, target, solver.ExecOptions{Nproc: *nproc})
}

// restartOptions maps the command line flags onto loader options. The
// configured default checkpoint applies when no source is given.
func restartOptions(ctx *Context) (restart.Options, error) {
	var opts restart.Options
	var err error

	if opts.StartFrom, err = ctx.StringParam(useStartFromFlag.name); err != nil {
		return opts, err
	}
	checkpoint, err := ctx.IntParam(useCheckpointFlag.name)
	if err != nil {
		return opts, err
	}
	switch {
	case checkpoint != nil:
		opts.Checkpoint = *checkpoint
	case opts.StartFrom == "":
		opts.Checkpoint = ctx.Config.Restart.DefaultCheckpoint
	}
	if opts.SessionID, err = ctx.IntParam(sessionIDFlag.name); err != nil {
		return opts, err
	}
	if opts.SkipVerify, err = ctx.BoolParam(skipVerifyFlag.name); err != nil {
		return opts, err
	}
	return opts, nil
}

func timeStepping(ctx *Context) (restart.TimeStepping, error) {
	var ts restart.TimeStepping
	var err error

	if ts.EndTime, err = ctx.FloatParam(endTimeFlag.name); err != nil {
		return ts, err
	}
	if ts.AddToEndTime, err = ctx.FloatParam(addToEndTimeFlag.name); err != nil {
		return ts, err
	}
	if ts.NumSteps, err = ctx.IntParam(numStepsFlag.name); err != nil {
		return ts, err
	}
	return ts, nil
}

// sessionFiles lists the case inputs found in runDir.
func sessionFiles(runDir, caseName, parFile string) session.Files {
	files := session.Files{Case: caseName, Par: parFile}
	if name := caseName + ".re2"; fileutil.FileExists(filepath.Join(runDir, name)) {
		files.Re2 = name
	}
	if name := caseName + ".ma2"; fileutil.FileExists(filepath.Join(runDir, name)) {
		files.Ma2 = name
	}
	return files
}
