package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoad(t *testing.T, opts ...ConfigLoaderOption) *Config {
	t.Helper()
	cfg, err := NewConfigLoader(viper.New(), opts...).Load()
	require.NoError(t, err)
	return cfg
}

func testLoadWithError(t *testing.T, opts ...ConfigLoaderOption) error {
	t.Helper()
	_, err := NewConfigLoader(viper.New(), opts...).Load()
	return err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FLUIDSIM_PATH", "")
	home := t.TempDir()

	cfg := testLoad(t, WithAppHomeDir(home))

	assert.False(t, cfg.Core.Debug)
	assert.Equal(t, "text", cfg.Core.LogFormat)
	assert.Equal(t, home, cfg.Paths.ConfigDir)
	assert.Empty(t, cfg.Paths.ConfigFileUsed)
	assert.Empty(t, cfg.Paths.SimulationsDir)
	assert.Equal(t, []string{"SIZE", "nek5000"}, cfg.Inspect.Markers)
	assert.Equal(t, 4, cfg.Restart.NbMpiProcs)
	assert.Equal(t, 1, cfg.Restart.DefaultCheckpoint)
	assert.Equal(t, "run_fg", cfg.Restart.Target)
	assert.Equal(t, DefaultSolverCommand, cfg.Solver.Command)
	assert.Equal(t, []string{"phill", "tgv", "cbox"}, cfg.Solver.Solvers)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_ConfigDirectory(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("log_format: json\n"), 0600))

	cfg := testLoad(t, WithAppHomeDir(home))
	assert.Equal(t, "json", cfg.Core.LogFormat)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.Paths.ConfigFileUsed)

	t.Run("FromHomeEnv", func(t *testing.T) {
		t.Setenv("SNEKCTL_HOME", home)
		cfg := testLoad(t)
		assert.Equal(t, "json", cfg.Core.LogFormat)
	})
}

func TestLoad_File(t *testing.T) {
	sims := t.TempDir()
	configFile := writeConfig(t, `
debug: true
log_format: JSON
paths:
  simulations_dir: `+sims+`
inspect:
  markers: [nek5000, SESSION.NAME]
restart:
  nb_mpi_procs: 16
  default_checkpoint: 2
  target: run
solver:
  command: "mpiexec -n $NPROC ./nek5000"
  solvers:
    - phill
    - abl
`)

	cfg := testLoad(t, WithConfigFile(configFile), WithAppHomeDir(t.TempDir()))

	assert.True(t, cfg.Core.Debug)
	assert.Equal(t, "json", cfg.Core.LogFormat)
	assert.Equal(t, sims, cfg.Paths.SimulationsDir)
	assert.Equal(t, configFile, cfg.Paths.ConfigFileUsed)
	assert.Equal(t, []string{"nek5000", "SESSION.NAME"}, cfg.Inspect.Markers)
	assert.Equal(t, 16, cfg.Restart.NbMpiProcs)
	assert.Equal(t, 2, cfg.Restart.DefaultCheckpoint)
	assert.Equal(t, "run", cfg.Restart.Target)
	assert.Equal(t, "mpiexec -n $NPROC ./nek5000", cfg.Solver.Command)
	assert.Equal(t, []string{"phill", "abl"}, cfg.Solver.Solvers)
}

func TestLoad_Env(t *testing.T) {
	sims := t.TempDir()

	testEnvs := map[string]string{
		"SNEKCTL_DEBUG":              "true",
		"SNEKCTL_LOG_FORMAT":         "json",
		"SNEKCTL_SIMULATIONS_DIR":    sims,
		"SNEKCTL_MARKERS":            "SIZE, nek5000 ,phill.usr",
		"SNEKCTL_NB_MPI_PROCS":       "8",
		"SNEKCTL_DEFAULT_CHECKPOINT": "0",
		"SNEKCTL_RESTART_TARGET":     "run",
		"SNEKCTL_SOLVER_COMMAND":     "echo $TARGET",
		"SNEKCTL_SOLVERS":            "phill,abl",
	}
	for k, v := range testEnvs {
		t.Setenv(k, v)
	}

	cfg := testLoad(t, WithAppHomeDir(t.TempDir()))

	assert.True(t, cfg.Core.Debug)
	assert.Equal(t, "json", cfg.Core.LogFormat)
	assert.Equal(t, sims, cfg.Paths.SimulationsDir)
	assert.Equal(t, []string{"SIZE", "nek5000", "phill.usr"}, cfg.Inspect.Markers)
	assert.Equal(t, 8, cfg.Restart.NbMpiProcs)
	assert.Equal(t, 0, cfg.Restart.DefaultCheckpoint)
	assert.Equal(t, "run", cfg.Restart.Target)
	assert.Equal(t, "echo $TARGET", cfg.Solver.Command)
	assert.Equal(t, []string{"phill", "abl"}, cfg.Solver.Solvers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	configFile := writeConfig(t, "restart:\n  nb_mpi_procs: 2\n")
	t.Setenv("SNEKCTL_NB_MPI_PROCS", "32")

	cfg := testLoad(t, WithConfigFile(configFile), WithAppHomeDir(t.TempDir()))
	assert.Equal(t, 32, cfg.Restart.NbMpiProcs)
}

func TestLoad_FluidsimPath(t *testing.T) {
	sims := t.TempDir()
	t.Setenv("FLUIDSIM_PATH", sims)

	cfg := testLoad(t, WithAppHomeDir(t.TempDir()))
	assert.Equal(t, sims, cfg.Paths.SimulationsDir)

	t.Run("MissingDirectoryWarns", func(t *testing.T) {
		t.Setenv("FLUIDSIM_PATH", filepath.Join(sims, "missing"))

		cfg := testLoad(t, WithAppHomeDir(t.TempDir()))
		require.Len(t, cfg.Warnings, 1)
		assert.Contains(t, cfg.Warnings[0], "does not exist")
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		err := testLoadWithError(t, WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		err := testLoadWithError(t, WithConfigFile(writeConfig(t, "restart: [\n")))
		require.Error(t, err)
	})

	t.Run("InvalidValues", func(t *testing.T) {
		configFile := writeConfig(t, "log_format: xml\nrestart:\n  nb_mpi_procs: 0\n  default_checkpoint: 3\n")
		err := testLoadWithError(t, WithConfigFile(configFile), WithAppHomeDir(t.TempDir()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
		assert.Contains(t, err.Error(), "invalid number of MPI processes")
		assert.Contains(t, err.Error(), "invalid default checkpoint")
	})
}

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{name: "Nil", input: nil, want: nil},
		{name: "EmptyString", input: "", want: nil},
		{name: "CommaSeparated", input: "a, b,,c ", want: []string{"a", "b", "c"}},
		{name: "AnySlice", input: []any{"a", 1, " b "}, want: []string{"a", "b"}},
		{name: "StringSlice", input: []string{"a", ""}, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStringList(tt.input))
		})
	}
}
