package test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/snek5000/snekctl/internal/cmn/config"
	"github.com/snek5000/snekctl/internal/cmn/logger"
)

// HelperOption defines functional options for Helper
type HelperOption func(*Options)

type Options struct {
	CaptureLoggingOutput bool // CaptureLoggingOutput enables capturing of logging output
	ConfigValues         map[string]any
}

// WithCaptureLoggingOutput creates a logging capture option
func WithCaptureLoggingOutput() HelperOption {
	return func(opts *Options) {
		opts.CaptureLoggingOutput = true
	}
}

// WithConfigValue sets a dotted configuration key (e.g. "solver.command")
// in the config file written by Setup.
func WithConfigValue(key string, value any) HelperOption {
	return func(opts *Options) {
		if opts.ConfigValues == nil {
			opts.ConfigValues = map[string]any{}
		}
		opts.ConfigValues[key] = value
	}
}

// Helper carries an isolated configuration home and a logging context.
type Helper struct {
	Context       context.Context
	Config        *config.Config
	HomeDir       string
	LoggingOutput *SyncBuffer
}

// Setup isolates the test from the user's configuration: SNEKCTL_HOME
// points to a temporary directory holding a generated config.yaml.
func Setup(t *testing.T, opts ...HelperOption) Helper {
	t.Helper()

	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	home := t.TempDir()
	t.Setenv("SNEKCTL_HOME", home)
	t.Setenv("FLUIDSIM_PATH", "")
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "SNEKCTL_") && name != "SNEKCTL_HOME" {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}

	writeHelperConfigFile(t, filepath.Join(home, "config.yaml"), options.ConfigValues)

	cfg, err := config.Load(config.WithAppHomeDir(home))
	require.NoError(t, err)

	loggerOpts := []logger.Option{logger.WithDebug(), logger.WithFormat("text")}
	helper := Helper{Config: cfg, HomeDir: home}
	if options.CaptureLoggingOutput {
		helper.LoggingOutput = &SyncBuffer{buf: new(bytes.Buffer)}
		loggerOpts = append(loggerOpts, logger.WithWriter(helper.LoggingOutput), logger.WithQuiet())
	}
	helper.Context = logger.WithLogger(context.Background(), logger.NewLogger(loggerOpts...))

	return helper
}

// writeHelperConfigFile writes values, keyed by dotted paths, as YAML.
func writeHelperConfigFile(t *testing.T, path string, values map[string]any) {
	t.Helper()

	doc := map[string]any{}
	for key, value := range values {
		node := doc
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

// SyncBuffer provides thread-safe buffer operations
type SyncBuffer struct {
	buf  *bytes.Buffer
	lock sync.Mutex
}

func (b *SyncBuffer) Write(p []byte) (n int, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}
