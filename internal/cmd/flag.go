package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type flagKind int

const (
	stringFlag flagKind = iota
	boolFlag
	intFlag
	floatFlag
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	required                             bool
	kind                                 flagKind
}

var (
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is $XDG_CONFIG_HOME/snekctl/config.yaml)",
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress log output",
		kind:      boolFlag,
	}
	nbMpiProcsFlag = commandLineFlag{
		name:      "nb-mpi-procs",
		shorthand: "n",
		usage:     "number of MPI processes (default from config)",
		kind:      intFlag,
	}
	useStartFromFlag = commandLineFlag{
		name:  "use-start-from",
		usage: "field file of the previous session to restart from",
	}
	useCheckpointFlag = commandLineFlag{
		name:  "use-checkpoint",
		usage: "multi-file checkpoint set (1 or 2) to restart from",
		kind:  intFlag,
	}
	sessionIDFlag = commandLineFlag{
		name:  "session-id",
		usage: "session to restart from (default from the parameters)",
		kind:  intFlag,
	}
	skipVerifyFlag = commandLineFlag{
		name:  "skip-verify-contents",
		usage: "restart even if the directory status would block it",
		kind:  boolFlag,
	}
	addToEndTimeFlag = commandLineFlag{
		name:  "add-to-end-time",
		usage: "extend the end time by this amount",
		kind:  floatFlag,
	}
	endTimeFlag = commandLineFlag{
		name:  "end-time",
		usage: "new end time",
		kind:  floatFlag,
	}
	numStepsFlag = commandLineFlag{
		name:  "num-steps",
		usage: "number of time steps",
		kind:  intFlag,
	}
	onlyInitFlag = commandLineFlag{
		name:  "only-init",
		usage: "prepare the new session without launching the solver",
		kind:  boolFlag,
	}
	formatFlag = commandLineFlag{
		name:         "format",
		shorthand:    "o",
		defaultValue: "table",
		usage:        "output format: table, json or yaml",
	}
	verboseFlag = commandLineFlag{
		name:      "verbose",
		shorthand: "v",
		usage:     "list the directory contents while inspecting",
		kind:      boolFlag,
	}
	forceSuffixFlag = commandLineFlag{
		name:  "force-suffix",
		usage: "append a suffix even when the path is free",
		kind:  boolFlag,
	}
	caseFlag = commandLineFlag{
		name:  "case",
		usage: "case name (default is the solver of the parameters)",
	}
)

// commonFlags are added to every command.
var commonFlags = []commandLineFlag{configFlag, quietFlag}

func initFlags(cmd *cobra.Command, addFlags ...commandLineFlag) {
	for _, flag := range append(append([]commandLineFlag{}, commonFlags...), addFlags...) {
		switch flag.kind {
		case boolFlag:
			def, _ := strconv.ParseBool(flag.defaultValue)
			cmd.Flags().BoolP(flag.name, flag.shorthand, def, flag.usage)
		case intFlag:
			def, _ := strconv.Atoi(flag.defaultValue)
			cmd.Flags().IntP(flag.name, flag.shorthand, def, flag.usage)
		case floatFlag:
			def, _ := strconv.ParseFloat(flag.defaultValue, 64)
			cmd.Flags().Float64P(flag.name, flag.shorthand, def, flag.usage)
		default:
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, addFlags ...commandLineFlag) error {
	for _, flag := range append(append([]commandLineFlag{}, commonFlags...), addFlags...) {
		if err := v.BindPFlag(flag.name, cmd.Flags().Lookup(flag.name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.name, err)
		}
	}
	return nil
}
