package test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// CmdTest is a helper struct to test commands.
type CmdTest struct {
	Name        string   // Name of the test.
	Args        []string // Arguments to pass to the command.
	ExpectedOut []string // Expected output to be present in the standard output.
}

// Command is a helper struct to test commands.
type Command struct {
	Helper
}

// RunCommand runs the command, requires it to succeed and returns its
// standard output.
func (th Command) RunCommand(t *testing.T, cmd *cobra.Command, testCase CmdTest) string {
	t.Helper()

	output, err := th.RunCommandWithError(t, cmd, testCase)
	require.NoError(t, err, "output: %s", output)

	for _, expectedOutput := range testCase.ExpectedOut {
		require.Contains(t, output, expectedOutput)
	}
	return output
}

// RunCommandWithError runs a command and returns its standard output and
// error without failing the test.
func (th Command) RunCommandWithError(t *testing.T, cmd *cobra.Command, testCase CmdTest) (string, error) {
	t.Helper()

	cmdRoot := &cobra.Command{Use: "root", SilenceErrors: true}
	cmdRoot.AddCommand(cmd)

	var out bytes.Buffer
	cmdRoot.SetOut(&out)
	cmdRoot.SetErr(&out)
	cmdRoot.SetArgs(withConfigFlag(testCase.Args, th.Config.Paths.ConfigFileUsed))

	err := cmdRoot.ExecuteContext(th.Context)
	return out.String(), err
}

func SetupCommand(t *testing.T, opts ...HelperOption) Command {
	t.Helper()

	return Command{Helper: Setup(t, opts...)}
}

// withConfigFlag appends --config <file> unless already present.
func withConfigFlag(args []string, configFile string) []string {
	if configFile == "" || len(args) == 0 {
		return args
	}
	for _, arg := range args {
		if arg == "--config" || arg == "-c" || hasConfigInline(arg) {
			return args
		}
	}
	return append(args, "--config", configFile)
}

func hasConfigInline(arg string) bool {
	return strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "-c=")
}
