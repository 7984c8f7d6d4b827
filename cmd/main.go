package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/snek5000/snekctl/internal/cmd"
	"github.com/snek5000/snekctl/internal/cmn/config"
)

var rootCmd = &cobra.Command{
	Use:   config.AppSlug,
	Short: "snekctl inspects and restarts snek5000 simulations",
	Long: `snekctl inspects and restarts snek5000 (Nek5000) simulations.

It reports whether a simulation directory can be restarted, allocates a new
session directory, wires the restart source (field file or multi-file
checkpoint) into the parameters and launches the solver through snakemake.
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cmd.Restart())
	rootCmd.AddCommand(cmd.Status())
	rootCmd.AddCommand(cmd.NextPath())
	rootCmd.AddCommand(cmd.CreateSession())
	rootCmd.AddCommand(cmd.Version())

	config.Version = version
}

var version = "0.0.0"
