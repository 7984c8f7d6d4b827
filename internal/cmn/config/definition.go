package config

// Definition holds the configuration as read from file and environment,
// before it is validated and turned into a Config.
type Definition struct {
	// Debug enables debug level logging.
	Debug bool `mapstructure:"debug"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format"`

	Paths   PathsDef   `mapstructure:"paths"`
	Inspect InspectDef `mapstructure:"inspect"`
	Restart RestartDef `mapstructure:"restart"`
	Solver  SolverDef  `mapstructure:"solver"`
}

// PathsDef holds file system locations.
type PathsDef struct {
	SimulationsDir string `mapstructure:"simulations_dir"`
}

// InspectDef configures the status inspector.
type InspectDef struct {
	// Markers accepts a list or a comma separated string.
	Markers any `mapstructure:"markers"`
}

// RestartDef holds the defaults of the restart command.
type RestartDef struct {
	NbMpiProcs        int    `mapstructure:"nb_mpi_procs"`
	DefaultCheckpoint int    `mapstructure:"default_checkpoint"`
	Target            string `mapstructure:"target"`
}

// SolverDef configures how simulations are launched.
type SolverDef struct {
	Command string `mapstructure:"command"`
	// Solvers accepts a list or a comma separated string.
	Solvers any `mapstructure:"solvers"`
}
