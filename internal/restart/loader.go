// Package restart prepares an existing simulation directory for a new run.
package restart

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/cmn/logger/tag"
	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/session"
	"github.com/snek5000/snekctl/internal/simdir"
	"github.com/snek5000/snekctl/internal/solver"
)

// Options selects the restart source.
type Options struct {
	// StartFrom is a field file of the old session to restart from.
	StartFrom string
	// Checkpoint is the multi-file checkpoint set (1 or 2), 0 when unused.
	Checkpoint int
	// SessionID selects the old session. Nil uses the session embedded in
	// the path or recorded in the parameters.
	SessionID *int
	// SkipVerify downgrades blocking statuses to informational ones.
	SkipVerify bool
}

// Loader loads parameters and the solver class for a restart.
type Loader struct {
	// Registry resolves solver short names. Nil uses solver.Default().
	Registry *solver.Registry
	// SimulationsDir is searched for relative directories that do not exist.
	SimulationsDir string
	// Markers overrides the files a runnable case must carry.
	Markers []string
}

// Load prepares the simulation in dir for a restart. It allocates and
// creates a new session directory, sets the restart source in the returned
// parameters and resolves the solver. Nothing is executed and the parameters
// are not written to disk.
func (l *Loader) Load(ctx context.Context, dir string, opts Options) (*params.Parameters, *solver.Class, error) {
	if opts.StartFrom != "" && opts.Checkpoint != 0 {
		return nil, nil, configurationError(
			"options use-start-from and use-checkpoint are mutually exclusive, use only one at a time")
	}

	runDir, err := ResolvePath(dir, l.SimulationsDir)
	if err != nil {
		return nil, nil, resolutionError("invalid simulation path", err)
	}

	sessionID := opts.SessionID
	if sessionID == nil {
		if parent, id, ok := session.ParsePath(runDir); ok {
			runDir = parent
			sessionID = &id
		}
	}
	ctx = logger.WithValues(ctx, "dir", runDir)

	p, err := params.Load(runDir)
	if err != nil {
		return nil, nil, resolutionError("failed to load parameters", err)
	}

	inspectID := p.Output.SessionID
	if sessionID != nil {
		inspectID = *sessionID
	}
	inspectOpts := []simdir.Option{simdir.WithSessionID(inspectID)}
	if len(l.Markers) > 0 {
		inspectOpts = append(inspectOpts, simdir.WithMarkers(l.Markers...))
	}
	status, err := simdir.Inspect(ctx, runDir, inspectOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to inspect simulation: %w", err)
	}

	if !opts.SkipVerify {
		if status.IsBlocking() {
			return nil, nil, stateError(status)
		}
		logger.Info(ctx, status.Summary())
	}

	shortName, err := params.SolverShortName(runDir)
	if err != nil {
		return nil, nil, resolutionError("failed to determine solver", err)
	}
	registry := l.Registry
	if registry == nil {
		registry = solver.Default()
	}
	class, err := registry.Import(shortName)
	if err != nil {
		return nil, nil, resolutionError(fmt.Sprintf("cannot import Simul class of solver %s", shortName), err)
	}

	oldSession := p.SessionPath(runDir)
	if sessionID != nil {
		oldSession = session.Path(runDir, *sessionID)
	}

	newID, newSession, err := fileutil.CreateNextDir(filepath.Join(runDir, session.Prefix))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate new session: %w", err)
	}
	p.SetSession(newID, newSession)
	logger.Info(ctx, "New session created", tag.Session(newSession), tag.SessionID(newID))

	switch {
	case opts.StartFrom != "":
		src := filepath.Join(oldSession, opts.StartFrom)
		if !fileutil.FileExists(src) {
			return nil, nil, sourceError("restart file %s not found", opts.StartFrom)
		}
		p.Nek.General.StartFrom = opts.StartFrom
		link := filepath.Join(newSession, opts.StartFrom)
		logger.Debug(ctx, "Symlinking restart file", tag.File(link), tag.Path(src))
		if err := fileutil.SymlinkRelative(src, link); err != nil {
			return nil, nil, err
		}

	case opts.Checkpoint != 0:
		if !isCheckpointSlot(opts.Checkpoint) || !canReadCheckpoint(status) {
			return nil, nil, sourceError("restart checkpoint %d is invalid / does not exist", opts.Checkpoint)
		}
		// Checkpoint files stay in the run directory, nothing to link.
		p.Nek.Chkpoint.ChkpFnumber = opts.Checkpoint
		p.Nek.Chkpoint.ReadChkpt = true
		logger.Info(ctx, "Restarting from checkpoint", tag.Checkpoint(opts.Checkpoint))

	default:
		logger.Info(ctx, "No restart files were requested. This would result in a fresh simulation in a new session.")
	}

	if p.ExposesHasToSave() {
		hasToSave := true
		p.Output.HasToSave = &hasToSave
	}
	p.NewDirResults = false

	return p, class, nil
}

func isCheckpointSlot(n int) bool {
	return n == 1 || n == 2
}

func canReadCheckpoint(status simdir.Status) bool {
	return status == simdir.StatusOK || status == simdir.StatusResetContent
}
