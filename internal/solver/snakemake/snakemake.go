// Package snakemake runs simulations through the snakemake task runner.
package snakemake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"mvdan.cc/sh/v3/shell"

	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/cmn/logger/tag"
	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/solver"
)

// DefaultCommand is the command template used when none is configured.
// $TARGET, $NPROC and $SIM_DIR are expanded before execution.
const DefaultCommand = "snakemake -j1 $TARGET --config nproc=$NPROC"

var errEmptyCommand = errors.New("solver command is empty")

var _ solver.Simul = (*Simul)(nil)

// Simul is a simulation driven by a command template.
type Simul struct {
	dir     string
	params  *params.Parameters
	command string
}

// NewFactory returns a solver factory running command. An empty command
// selects DefaultCommand.
func NewFactory(command string) solver.Factory {
	if command == "" {
		command = DefaultCommand
	}
	return func(ctx context.Context, dir string, p *params.Parameters) (solver.Simul, error) {
		return New(ctx, dir, p, command)
	}
}

// New persists p into dir so the task runner sees the restart settings, and
// returns the simulation.
func New(ctx context.Context, dir string, p *params.Parameters, command string) (*Simul, error) {
	if err := p.Save(dir); err != nil {
		return nil, fmt.Errorf("failed to save parameters: %w", err)
	}
	logger.Debug(ctx, "Parameters saved", tag.Dir(dir), tag.Session(p.Output.PathSession))

	return &Simul{dir: dir, params: p, command: command}, nil
}

// Params implements solver.Simul.
func (s *Simul) Params() *params.Parameters {
	return s.params
}

// Exec implements solver.Simul.
func (s *Simul) Exec(ctx context.Context, target string, opts solver.ExecOptions) error {
	vars := map[string]string{
		"TARGET":  target,
		"NPROC":   strconv.Itoa(opts.Nproc),
		"SIM_DIR": s.dir,
	}

	args, err := shell.Fields(s.command, func(name string) string {
		if v, ok := vars[name]; ok {
			return v
		}
		return os.Getenv(name)
	})
	if err != nil {
		return fmt.Errorf("failed to parse solver command: %w", err)
	}
	if len(args) == 0 {
		return errEmptyCommand
	}

	log := logger.FromContext(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Dir = s.dir
	cmd.Env = os.Environ()
	for k, v := range vars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = log.Writer()
	cmd.Stderr = log.Writer()

	logger.Info(ctx, "Running solver", tag.Command(args), tag.Target(target), tag.Dir(s.dir))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("solver command %q failed: %w", args[0], err)
	}
	return nil
}
