package simdir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/cmn/logger/tag"
	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/session"
)

const (
	// SnakemakeDir holds the task runner metadata of a run directory.
	SnakemakeDir = ".snakemake"
	// LocksDir is the lock directory inside SnakemakeDir.
	LocksDir = "locks"

	// CheckpointPattern matches multi-file restart checkpoints in the run directory.
	CheckpointPattern = "rs6*0.f?????"
	// FieldPattern matches field files written in a session directory.
	FieldPattern = "*0.f?????"
)

// DefaultMarkers are the files a compiled case must carry.
var DefaultMarkers = []string{"SIZE", "nek5000"}

// Option configures Inspect.
type Option func(*options)

type options struct {
	sessionID *int
	markers   []string
	verbose   io.Writer
}

// WithSessionID inspects session_NN instead of the session recorded in the
// parameters.
func WithSessionID(id int) Option {
	return func(o *options) {
		o.sessionID = &id
	}
}

// WithMarkers replaces the required marker files.
func WithMarkers(markers ...string) Option {
	return func(o *options) {
		o.markers = markers
	}
}

// WithVerbose writes the inspected directory and its contents to w.
func WithVerbose(w io.Writer) Option {
	return func(o *options) {
		o.verbose = w
	}
}

// Inspect classifies dir. The first matching condition wins: missing task
// runner metadata, an active lock, missing markers, then the field files of
// the session. Inspect never modifies the directory.
func Inspect(ctx context.Context, dir string, opts ...Option) (Status, error) {
	o := &options{markers: DefaultMarkers}
	for _, opt := range opts {
		opt(o)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read simulation directory: %w", err)
	}
	names := lo.Map(entries, func(e fs.DirEntry, _ int) string { return e.Name() })

	if o.verbose != nil {
		_, _ = fmt.Fprintf(o.verbose, "%s\n%s\n", dir, strings.Join(names, "\n"))
	}

	if !fileutil.IsDir(filepath.Join(dir, SnakemakeDir)) {
		return StatusTooEarly, nil
	}

	locked, err := hasLocks(filepath.Join(dir, SnakemakeDir, LocksDir))
	if err != nil {
		return 0, err
	}
	if locked {
		return StatusLocked, nil
	}

	if missing, _ := lo.Difference(o.markers, names); len(missing) > 0 {
		logger.Debug(ctx, "Required files missing", tag.Dir(dir), tag.Count(len(missing)))
		return StatusNotFound, nil
	}

	checkpoints := matching(names, CheckpointPattern)

	sessionDir, err := sessionPath(dir, o.sessionID)
	if err != nil {
		return 0, err
	}
	fields, err := listMatching(sessionDir, FieldPattern)
	if err != nil {
		return 0, err
	}

	logger.Debug(ctx, "Inspected simulation directory",
		tag.Dir(dir),
		tag.Session(sessionDir),
		tag.Checkpoints(len(checkpoints)),
		tag.Fields(len(fields)),
	)

	switch {
	case len(checkpoints) > 0 && len(fields) > 0:
		return StatusResetContent, nil
	case len(fields) > 0:
		return StatusPartialContent, nil
	default:
		return StatusOK, nil
	}
}

func sessionPath(dir string, id *int) (string, error) {
	if id != nil {
		return session.Path(dir, *id), nil
	}
	p, err := params.Load(dir)
	if err != nil {
		return "", err
	}
	return p.SessionPath(dir), nil
}

func hasLocks(locksDir string) (bool, error) {
	entries, err := os.ReadDir(locksDir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		// A lock path that is a plain file is not a lock directory.
		if !fileutil.IsDir(locksDir) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read lock directory: %w", err)
	}
	return len(entries) > 0, nil
}

// listMatching returns the entries of dir matching pattern. A missing
// directory has no entries.
func listMatching(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}
	names := lo.Map(entries, func(e fs.DirEntry, _ int) string { return e.Name() })
	return matching(names, pattern), nil
}

func matching(names []string, pattern string) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		ok, _ := doublestar.Match(pattern, name)
		return ok
	})
}
