package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultLogFormat     = "text"
	DefaultNbMpiProcs    = 4
	DefaultCheckpoint    = 1
	DefaultRestartTarget = "run_fg"
	DefaultSolverCommand = "snakemake -j1 $TARGET --config nproc=$NPROC"
)

// simulationsDirEnvFallback is the fluidsim variable naming the simulations root.
const simulationsDirEnvFallback = "FLUIDSIM_PATH"

var (
	defaultMarkers = []string{"SIZE", "nek5000"}
	defaultSolvers = []string{"phill", "tgv", "cbox"}
)

// ConfigLoader reads and merges configuration from various sources.
type ConfigLoader struct {
	v          *viper.Viper
	configFile string
	appHomeDir string
	warnings   []string
}

// ConfigLoaderOption defines a functional option for configuring a ConfigLoader.
type ConfigLoaderOption func(*ConfigLoader)

// WithConfigFile returns a ConfigLoaderOption that sets the configuration file path.
func WithConfigFile(configFile string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configFile = configFile
	}
}

// WithAppHomeDir overrides the directory searched for config.yaml, which
// otherwise is $SNEKCTL_HOME or $XDG_CONFIG_HOME/snekctl.
func WithAppHomeDir(dir string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.appHomeDir = dir
	}
}

// NewConfigLoader creates a ConfigLoader with the given viper instance and options.
func NewConfigLoader(v *viper.Viper, options ...ConfigLoaderOption) *ConfigLoader {
	loader := &ConfigLoader{v: v}
	for _, opt := range options {
		opt(loader)
	}
	return loader
}

// Load reads configuration with a fresh viper instance.
func Load(options ...ConfigLoaderOption) (*Config, error) {
	return NewConfigLoader(viper.New(), options...).Load()
}

// Load reads configuration files, applies defaults and environment overrides,
// and returns a validated Config instance.
func (l *ConfigLoader) Load() (*Config, error) {
	configDir, err := l.resolveConfigDir()
	if err != nil {
		return nil, err
	}

	l.configureViper(configDir, l.configFile)
	l.bindEnvironmentVariables()
	l.setViperDefaultValues()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	configFileUsed, err := l.resolvePath("config file", l.v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	var def Definition
	if err := l.v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := l.buildConfig(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	cfg.Paths.ConfigDir = configDir
	cfg.Paths.ConfigFileUsed = configFileUsed
	cfg.Warnings = l.warnings

	return cfg, nil
}

// buildConfig transforms the Definition into a validated Config structure.
func (l *ConfigLoader) buildConfig(def Definition) (*Config, error) {
	cfg := Config{
		Core: Core{
			Debug:     def.Debug,
			LogFormat: strings.ToLower(strings.TrimSpace(def.LogFormat)),
		},
		Restart: Restart{
			NbMpiProcs:        def.Restart.NbMpiProcs,
			DefaultCheckpoint: def.Restart.DefaultCheckpoint,
			Target:            def.Restart.Target,
		},
		Solver: Solver{
			Command: def.Solver.Command,
			Solvers: parseStringList(def.Solver.Solvers),
		},
		Inspect: Inspect{
			Markers: parseStringList(def.Inspect.Markers),
		},
	}

	simulationsDir, err := l.resolvePath("simulations", def.Paths.SimulationsDir)
	if err != nil {
		return nil, err
	}
	cfg.Paths.SimulationsDir = simulationsDir
	if simulationsDir != "" && !fileutil.IsDir(simulationsDir) {
		l.warnings = append(l.warnings, fmt.Sprintf("Simulations directory %s does not exist", simulationsDir))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolvePath resolves a path to an absolute path. Empty paths are returned as-is.
func (l *ConfigLoader) resolvePath(fieldName, pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	resolved, err := fileutil.ResolvePath(pathValue)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path %q: %w", fieldName, pathValue, err)
	}
	return resolved, nil
}

func (l *ConfigLoader) resolveConfigDir() (string, error) {
	dir := l.appHomeDir
	if dir == "" {
		dir = os.Getenv(strings.ToUpper(AppSlug) + "_HOME")
	}
	if dir == "" {
		dir = filepath.Join(xdg.ConfigHome, AppSlug)
	}
	return l.resolvePath("config directory", dir)
}

func (l *ConfigLoader) setViperDefaultValues() {
	l.v.SetDefault("debug", false)
	l.v.SetDefault("log_format", DefaultLogFormat)

	l.v.SetDefault("paths.simulations_dir", os.Getenv(simulationsDirEnvFallback))

	l.v.SetDefault("inspect.markers", defaultMarkers)

	l.v.SetDefault("restart.nb_mpi_procs", DefaultNbMpiProcs)
	l.v.SetDefault("restart.default_checkpoint", DefaultCheckpoint)
	l.v.SetDefault("restart.target", DefaultRestartTarget)

	l.v.SetDefault("solver.command", DefaultSolverCommand)
	l.v.SetDefault("solver.solvers", defaultSolvers)
}

type envBinding struct {
	key    string
	env    string
	isPath bool
}

var envBindings = []envBinding{
	{key: "debug", env: "DEBUG"},
	{key: "log_format", env: "LOG_FORMAT"},

	{key: "paths.simulations_dir", env: "SIMULATIONS_DIR", isPath: true},

	{key: "inspect.markers", env: "MARKERS"},

	{key: "restart.nb_mpi_procs", env: "NB_MPI_PROCS"},
	{key: "restart.default_checkpoint", env: "DEFAULT_CHECKPOINT"},
	{key: "restart.target", env: "RESTART_TARGET"},

	{key: "solver.command", env: "SOLVER_COMMAND"},
	{key: "solver.solvers", env: "SOLVERS"},
}

func (l *ConfigLoader) bindEnvironmentVariables() {
	prefix := strings.ToUpper(AppSlug) + "_"

	for _, b := range envBindings {
		fullEnv := prefix + b.env

		if b.isPath {
			if val := os.Getenv(fullEnv); val != "" {
				if abs, err := filepath.Abs(val); err == nil && abs != val {
					_ = os.Setenv(fullEnv, abs)
				}
			}
		}

		_ = l.v.BindEnv(b.key, fullEnv)
	}
}

func (l *ConfigLoader) configureViper(configDir, configFile string) {
	if configFile == "" {
		l.v.AddConfigPath(configDir)
		l.v.SetConfigName("config")
	} else {
		l.v.SetConfigFile(configFile)
	}
	l.v.SetConfigType("yaml")
	l.v.SetEnvPrefix(strings.ToUpper(AppSlug))
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

// parseStringList parses comma-separated strings or string slices, filtering empty entries.
func parseStringList(input any) []string {
	var result []string

	switch v := input.(type) {
	case string:
		if v != "" {
			for _, s := range strings.Split(v, ",") {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
	case []string:
		for _, s := range v {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}

	return result
}
