package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snek5000/snekctl/internal/cmn/config"
	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/solver"
	"github.com/snek5000/snekctl/internal/solver/snakemake"
)

// Context holds the configuration for a command.
type Context struct {
	context.Context

	Command *cobra.Command
	Flags   []commandLineFlag
	Config  *config.Config
	Quiet   bool
}

// LogToFile replaces the logger with one that also writes to f.
func (c *Context) LogToFile(f *os.File) {
	opts := c.loggerOptions()
	if f != nil {
		opts = append(opts, logger.WithWriter(f))
	}
	c.Context = logger.WithLogger(c.Context, logger.NewLogger(opts...))
}

func (c *Context) loggerOptions() []logger.Option {
	var opts []logger.Option
	if c.Config.Core.Debug || os.Getenv("DEBUG") != "" {
		opts = append(opts, logger.WithDebug())
	}
	if c.Quiet {
		opts = append(opts, logger.WithQuiet())
	}
	if c.Config.Core.LogFormat != "" {
		opts = append(opts, logger.WithFormat(c.Config.Core.LogFormat))
	}
	return opts
}

// NewContext initializes the application setup by loading configuration,
// setting up logger context, and logging any warnings.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	v := viper.New()
	if err := bindFlags(v, cmd, flags...); err != nil {
		return nil, err
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var configLoaderOpts []config.ConfigLoaderOption
	if cfgPath := v.GetString("config"); cfgPath != "" {
		configLoaderOpts = append(configLoaderOpts, config.WithConfigFile(cfgPath))
	}

	cfg, err := config.Load(configLoaderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ctx := &Context{
		Context: cmd.Context(),
		Command: cmd,
		Flags:   flags,
		Config:  cfg,
		Quiet:   quiet,
	}
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	ctx.LogToFile(nil)

	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}

	return ctx, nil
}

// StringParam retrieves a string parameter from the command line flags.
func (c *Context) StringParam(name string) (string, error) {
	val, err := c.Command.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return val, nil
}

// IntParam returns the value of an integer flag, or nil when the flag was
// not given on the command line.
func (c *Context) IntParam(name string) (*int, error) {
	if !c.Command.Flags().Changed(name) {
		return nil, nil
	}
	val, err := c.Command.Flags().GetInt(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return &val, nil
}

// FloatParam returns the value of a float flag, or nil when the flag was not
// given on the command line.
func (c *Context) FloatParam(name string) (*float64, error) {
	if !c.Command.Flags().Changed(name) {
		return nil, nil
	}
	val, err := c.Command.Flags().GetFloat64(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return &val, nil
}

// BoolParam retrieves a boolean parameter from the command line flags.
func (c *Context) BoolParam(name string) (bool, error) {
	val, err := c.Command.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return val, nil
}

// SolverRegistry returns a registry holding the configured solvers, each
// backed by the configured launch command.
func (c *Context) SolverRegistry() *solver.Registry {
	reg := solver.NewRegistry()
	factory := snakemake.NewFactory(c.Config.Solver.Command)
	for _, name := range c.Config.Solver.Solvers {
		reg.Register(name, factory)
	}
	return reg
}

// NewCommand creates a new command instance with the given cobra command and run function.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(cmd *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)

	cmd.SilenceUsage = true
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext(cmd, flags)
		if err != nil {
			return fmt.Errorf("initialization error: %w", err)
		}
		if err := runFunc(ctx, args); err != nil {
			logger.Error(ctx, "Command failed", "err", err)
			return err
		}
		return nil
	}

	return cmd
}

// genRunID creates a new UUID string identifying one command run.
func genRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
