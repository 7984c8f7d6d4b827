// Package tag provides standardized attribute constructors for structured logging.
//
// All keys are kebab-case. Use these instead of raw strings so that log
// output stays consistent across commands.
package tag

import (
	"log/slog"
)

// Error creates a tag for error values.
func Error(err any) slog.Attr {
	return slog.Any("err", err)
}

// Dir creates a tag for directory paths.
func Dir(path string) slog.Attr {
	return slog.String("dir", path)
}

// File creates a tag for file paths.
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Path creates a tag for generic paths (prefer File or Dir when specific).
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Session creates a tag for session directories.
func Session(path string) slog.Attr {
	return slog.String("session", path)
}

// SessionID creates a tag for numeric session ids.
func SessionID(id int) slog.Attr {
	return slog.Int("session-id", id)
}

// Status creates a tag for simulation status names.
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// Code creates a tag for simulation status codes.
func Code(code int) slog.Attr {
	return slog.Int("code", code)
}

// Solver creates a tag for solver short names.
func Solver(name string) slog.Attr {
	return slog.String("solver", name)
}

// RunID creates a tag for restart run ids.
func RunID(id string) slog.Attr {
	return slog.String("run-id", id)
}

// Target creates a tag for task-runner targets.
func Target(name string) slog.Attr {
	return slog.String("target", name)
}

// Checkpoint creates a tag for checkpoint slot numbers.
func Checkpoint(n int) slog.Attr {
	return slog.Int("checkpoint", n)
}

// Command creates a tag for command lines.
func Command(args []string) slog.Attr {
	return slog.Any("command", args)
}

// Count creates a tag for numeric counts.
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Checkpoints creates a tag for the number of multi-file restart checkpoints.
func Checkpoints(n int) slog.Attr {
	return slog.Int("checkpoints", n)
}

// Fields creates a tag for the number of field files.
func Fields(n int) slog.Attr {
	return slog.Int("fields", n)
}

// Procs creates a tag for the number of MPI processes.
func Procs(n int) slog.Attr {
	return slog.Int("nproc", n)
}
