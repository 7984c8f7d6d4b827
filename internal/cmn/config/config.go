package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Config holds the overall configuration for the application.
type Config struct {
	Core     Core
	Paths    PathsConfig
	Inspect  Inspect
	Restart  Restart
	Solver   Solver
	Warnings []string
}

// Core holds global settings.
type Core struct {
	// Debug enables debug level logging.
	Debug bool
	// LogFormat is "text" or "json".
	LogFormat string
}

// PathsConfig holds file system locations.
type PathsConfig struct {
	// ConfigDir is the directory searched for config.yaml.
	ConfigDir string
	// SimulationsDir is where simulations are looked up by name. Defaults to
	// $FLUIDSIM_PATH.
	SimulationsDir string
	// ConfigFileUsed is the config file that was read, if any.
	ConfigFileUsed string
}

// Inspect configures the status inspector.
type Inspect struct {
	// Markers are the files a compiled case must carry.
	Markers []string
}

// Restart holds the defaults of the restart command.
type Restart struct {
	NbMpiProcs int
	// DefaultCheckpoint is used when no restart source is given. 0 starts a
	// fresh session.
	DefaultCheckpoint int
	// Target is the task runner target that runs the solver in the foreground.
	Target string
}

// Solver configures how simulations are launched.
type Solver struct {
	// Command is the command template run for a target.
	Command string
	// Solvers lists the solver short names snekctl can restart.
	Solvers []string
}

var logFormats = []string{"text", "json"}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(logFormats, c.Core.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q, must be one of %s",
			c.Core.LogFormat, strings.Join(logFormats, ", ")))
	}
	if c.Restart.NbMpiProcs < 1 {
		errs = append(errs, fmt.Errorf("invalid number of MPI processes: %d", c.Restart.NbMpiProcs))
	}
	if c.Restart.DefaultCheckpoint < 0 || c.Restart.DefaultCheckpoint > 2 {
		errs = append(errs, fmt.Errorf("invalid default checkpoint %d, must be 0, 1 or 2", c.Restart.DefaultCheckpoint))
	}
	if c.Restart.Target == "" {
		errs = append(errs, errors.New("restart target must not be empty"))
	}
	if strings.TrimSpace(c.Solver.Command) == "" {
		errs = append(errs, errors.New("solver command must not be empty"))
	}
	if len(c.Inspect.Markers) == 0 {
		errs = append(errs, errors.New("at least one inspect marker is required"))
	}

	return errors.Join(errs...)
}
