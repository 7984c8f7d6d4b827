package restart_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/restart"
	"github.com/snek5000/snekctl/internal/simdir"
	"github.com/snek5000/snekctl/internal/solver"
	"github.com/snek5000/snekctl/internal/test"
)

type nopSimul struct{ p *params.Parameters }

func (n *nopSimul) Exec(context.Context, string, solver.ExecOptions) error { return nil }
func (n *nopSimul) Params() *params.Parameters                            { return n.p }

func newLoader() *restart.Loader {
	r := solver.NewRegistry()
	r.Register("phill", func(_ context.Context, _ string, p *params.Parameters) (solver.Simul, error) {
		return &nopSimul{p: p}, nil
	})
	return &restart.Loader{Registry: r}
}

func intPtr(v int) *int { return &v }

func TestLoadMutuallyExclusiveSources(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, _, err := newLoader().Load(context.Background(), missing, restart.Options{
		StartFrom:  "phill0.f00001",
		Checkpoint: 1,
	})
	require.ErrorIs(t, err, restart.ErrConfiguration)
	assert.NoDirExists(t, missing)

	var rerr *restart.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, restart.KindConfiguration, rerr.Kind)
}

func TestLoadBlockingStatus(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(s *test.SimDir)
		status  simdir.Status
	}{
		{name: "TooEarly", prepare: func(s *test.SimDir) { s.Remove(".snakemake") }, status: simdir.StatusTooEarly},
		{name: "Locked", prepare: func(s *test.SimDir) { s.Lock() }, status: simdir.StatusLocked},
		{name: "NotFound", prepare: func(s *test.SimDir) { s.Remove("SIZE") }, status: simdir.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := test.NewSimDir(t)
			tt.prepare(s)

			_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 1})
			require.ErrorIs(t, err, restart.ErrRestartState)

			var rerr *restart.Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.status, rerr.Status)
			assert.Equal(t, tt.status.Code(), rerr.Status.Code())
			assert.Equal(t, tt.status.Summary(), err.Error())
			assert.NoDirExists(t, s.Path("session_01"))
		})
	}
}

func TestLoadSkipVerify(t *testing.T) {
	s := test.NewSimDir(t).Remove("SIZE")

	p, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{SkipVerify: true})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Output.SessionID)

	t.Run("CheckpointStillNeedsReadableStatus", func(t *testing.T) {
		_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{SkipVerify: true, Checkpoint: 1})
		require.ErrorIs(t, err, restart.ErrRestartSource)
	})
}

func TestLoadCheckpoint(t *testing.T) {
	s := test.NewSimDir(t)

	p, cls, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 1})
	require.NoError(t, err)
	assert.Equal(t, "phill", cls.Name)
	assert.True(t, p.Nek.Chkpoint.ReadChkpt)
	assert.Equal(t, 1, p.Nek.Chkpoint.ChkpFnumber)
	assert.Equal(t, 1, p.Output.SessionID)
	assert.Equal(t, s.Path("session_01"), p.Output.PathSession)
	assert.DirExists(t, s.Path("session_01"))

	assert.False(t, p.NewDirResults)
	require.True(t, p.ExposesHasToSave())
	assert.True(t, *p.Output.HasToSave)

	t.Run("ParametersOnDiskUntouched", func(t *testing.T) {
		onDisk, err := params.Load(s.Root)
		require.NoError(t, err)
		assert.Equal(t, 0, onDisk.Output.SessionID)
		assert.False(t, onDisk.Nek.Chkpoint.ReadChkpt)
		assert.True(t, onDisk.NewDirResults)
	})

	t.Run("SecondSlotWithResetContent", func(t *testing.T) {
		s := test.NewSimDir(t).Touch("rs6phill0.f00001").Touch("session_00/phill0.f00001")

		p, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, p.Nek.Chkpoint.ChkpFnumber)
	})

	t.Run("PartialContentCannotUseCheckpoint", func(t *testing.T) {
		s := test.NewSimDir(t).Touch("session_00/phill0.f00001")

		_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 1})
		require.ErrorIs(t, err, restart.ErrRestartSource)
		assert.Contains(t, err.Error(), "checkpoint 1")
	})

	t.Run("InvalidSlot", func(t *testing.T) {
		s := test.NewSimDir(t)

		_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 3})
		require.ErrorIs(t, err, restart.ErrRestartSource)
		assert.Contains(t, err.Error(), "checkpoint 3")
	})
}

func TestLoadStartFrom(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		s := test.NewSimDir(t)

		_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{StartFrom: "x.f00001"})
		require.ErrorIs(t, err, restart.ErrRestartSource)
		assert.Contains(t, err.Error(), "x.f00001")
	})

	t.Run("LinksFieldFile", func(t *testing.T) {
		s := test.NewSimDir(t).Touch("session_00/phill0.f00003")

		p, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{StartFrom: "phill0.f00003"})
		require.NoError(t, err)
		assert.Equal(t, "phill0.f00003", p.Nek.General.StartFrom)
		assert.False(t, p.Nek.Chkpoint.ReadChkpt)

		dest, err := os.Readlink(s.Path("session_01", "phill0.f00003"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("..", "session_00", "phill0.f00003"), dest)
	})

	t.Run("ExplicitSession", func(t *testing.T) {
		s := test.NewSimDir(t).
			Touch("session_00/phill0.f00001").
			Touch("session_01/phill0.f00002").
			WriteParams(1, "session_01")

		p, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{
			StartFrom:  "phill0.f00001",
			SessionID:  intPtr(0),
			SkipVerify: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, p.Output.SessionID)

		dest, err := os.Readlink(s.Path("session_02", "phill0.f00001"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("..", "session_00", "phill0.f00001"), dest)
	})

	t.Run("SessionFromPath", func(t *testing.T) {
		s := test.NewSimDir(t).
			Touch("session_00/phill0.f00001").
			Mkdir("session_01").
			WriteParams(1, "session_01")

		p, _, err := newLoader().Load(context.Background(), s.Path("session_00"), restart.Options{
			StartFrom:  "phill0.f00001",
			SkipVerify: true,
		})
		require.NoError(t, err)
		assert.Equal(t, s.Path("session_02"), p.Output.PathSession)
		assert.FileExists(t, s.Path("session_02", "phill0.f00001"))
	})
}

func TestLoadFreshSession(t *testing.T) {
	s := test.NewSimDir(t)

	p, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{})
	require.NoError(t, err)
	assert.Empty(t, p.Nek.General.StartFrom)
	assert.False(t, p.Nek.Chkpoint.ReadChkpt)
	assert.Equal(t, 1, p.Output.SessionID)

	p2, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Output.SessionID)
}

func TestLoadResolution(t *testing.T) {
	t.Run("MissingParameters", func(t *testing.T) {
		s := test.NewSimDir(t).Remove(params.FileName)

		_, _, err := newLoader().Load(context.Background(), s.Root, restart.Options{})
		require.ErrorIs(t, err, restart.ErrResolution)
		require.ErrorIs(t, err, params.ErrNotFound)
	})

	t.Run("UnknownSolver", func(t *testing.T) {
		s := test.NewSimDir(t)
		loader := &restart.Loader{Registry: solver.NewRegistry()}

		_, _, err := loader.Load(context.Background(), s.Root, restart.Options{})
		require.ErrorIs(t, err, restart.ErrResolution)
		require.ErrorIs(t, err, solver.ErrNotRegistered)
		assert.Contains(t, err.Error(), "phill")
		assert.NoDirExists(t, s.Path("session_01"))
	})

	t.Run("SimulationsDirFallback", func(t *testing.T) {
		s := test.NewSimDir(t)
		loader := newLoader()
		loader.SimulationsDir = filepath.Dir(s.Root)

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		p, _, err := loader.Load(context.Background(), filepath.Base(s.Root), restart.Options{})
		require.NoError(t, err)
		assert.Equal(t, s.Path("session_01"), p.Output.PathSession)
	})
}

func TestLoadParFallback(t *testing.T) {
	s := test.NewSimDir(t).
		Remove(params.FileName).
		WriteFile("phill.par", "[GENERAL]\nendTime = 5\n\n[_CHKPOINT]\nchkp_fnumber = 1\nread_chkpt = no\n")

	p, cls, err := newLoader().Load(context.Background(), s.Root, restart.Options{Checkpoint: 2})
	require.NoError(t, err)
	assert.Equal(t, "phill", cls.Name)
	assert.Equal(t, 2, p.Nek.Chkpoint.ChkpFnumber)
	assert.False(t, p.ExposesHasToSave())
	assert.False(t, p.NewDirResults)
}

func TestLoadLogsProgress(t *testing.T) {
	th := test.Setup(t, test.WithCaptureLoggingOutput())
	s := test.NewSimDir(t)

	_, _, err := newLoader().Load(th.Context, s.Root, restart.Options{})
	require.NoError(t, err)

	out := th.LoggingOutput.String()
	assert.Contains(t, out, "200: OK")
	assert.Contains(t, out, "New session created")
	assert.Contains(t, out, "fresh simulation in a new session")
}
