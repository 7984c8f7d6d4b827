package restart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snek5000/snekctl/internal/params"
	"github.com/snek5000/snekctl/internal/simdir"
)

func TestError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
		msg      string
	}{
		{
			name:     "Configuration",
			err:      configurationError("bad flags"),
			sentinel: ErrConfiguration,
			kind:     KindConfiguration,
			msg:      "bad flags",
		},
		{
			name:     "RestartState",
			err:      stateError(simdir.StatusLocked),
			sentinel: ErrRestartState,
			kind:     KindRestartState,
			msg:      simdir.StatusLocked.Summary(),
		},
		{
			name:     "RestartSource",
			err:      sourceError("restart file %s not found", "a.f00001"),
			sentinel: ErrRestartSource,
			kind:     KindRestartSource,
			msg:      "restart file a.f00001 not found",
		},
		{
			name:     "Resolution",
			err:      resolutionError("failed to load parameters", cause),
			sentinel: ErrResolution,
			kind:     KindResolution,
			msg:      "failed to load parameters: boom",
		},
	}

	sentinels := []error{ErrConfiguration, ErrRestartState, ErrRestartSource, ErrResolution}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("restart: %w", tt.err)
			for _, s := range sentinels {
				assert.Equal(t, s == tt.sentinel, errors.Is(wrapped, s), s.Error())
			}

			var rerr *Error
			require.True(t, errors.As(wrapped, &rerr))
			assert.Equal(t, tt.kind, rerr.Kind)
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.NotEqual(t, "unknown", rerr.Kind.String())
		})
	}

	assert.ErrorIs(t, resolutionError("x", cause), cause)
}

func TestTimeStepping(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	tests := []struct {
		name     string
		ts       TimeStepping
		endTime  float64
		numSteps int
		wantErr  bool
	}{
		{name: "None", endTime: 10, numSteps: 0},
		{name: "EndTime", ts: TimeStepping{EndTime: f(25)}, endTime: 25},
		{name: "AddToEndTime", ts: TimeStepping{AddToEndTime: f(2.5)}, endTime: 12.5},
		{name: "NumSteps", ts: TimeStepping{NumSteps: n(400)}, endTime: 10, numSteps: 400},
		{name: "Both", ts: TimeStepping{EndTime: f(1), AddToEndTime: f(1)}, wantErr: true},
		{name: "NegativeEndTime", ts: TimeStepping{EndTime: f(-1)}, wantErr: true},
		{name: "NegativeSteps", ts: TimeStepping{NumSteps: n(-3)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &params.Parameters{}
			p.Nek.General.EndTime = 10

			err := tt.ts.Apply(p)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endTime, p.Nek.General.EndTime)
			assert.Equal(t, tt.numSteps, p.Nek.General.NumSteps)
		})
	}

	assert.True(t, TimeStepping{}.IsZero())
	assert.False(t, TimeStepping{NumSteps: n(1)}.IsZero())
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "phill_run"), 0750))

	t.Run("Absolute", func(t *testing.T) {
		got, err := ResolvePath(filepath.Join(root, "phill_run"), "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "phill_run"), got)
	})

	t.Run("SimulationsDir", func(t *testing.T) {
		got, err := ResolvePath("phill_run", root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "phill_run"), got)
	})

	t.Run("UnknownStaysRelativeToWorkingDir", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		got, err := ResolvePath("nowhere", root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "nowhere"), got)
	})

	t.Run("EmptyIsWorkingDir", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		got, err := ResolvePath("", "")
		require.NoError(t, err)
		assert.Equal(t, wd, got)
	})
}
