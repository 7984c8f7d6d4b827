package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	assert.Equal(t, "session_00", Name(0))
	assert.Equal(t, "session_07", Name(7))
	assert.Equal(t, "session_123", Name(123))
	assert.Equal(t, filepath.Join("/sims/phill", "session_01"), Path("/sims/phill", 1))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		runDir string
		id     int
		ok     bool
	}{
		{name: "RunDirectory", path: "/sims/phill_run", runDir: "/sims/phill_run"},
		{name: "SessionDirectory", path: "/sims/phill_run/session_02", runDir: "/sims/phill_run", id: 2, ok: true},
		{name: "TrailingSlash", path: "/sims/phill_run/session_10/", runDir: "/sims/phill_run", id: 10, ok: true},
		{name: "NotASession", path: "/sims/session_x", runDir: "/sims/session_x"},
		{name: "BareSession", path: "/sims/session", runDir: "/sims/session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runDir, id, ok := ParsePath(tt.path)
			assert.Equal(t, tt.runDir, runDir)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCreate(t *testing.T) {
	runDir := t.TempDir()
	for _, name := range []string{"phill.re2", "phill.ma2"} {
		require.NoError(t, os.WriteFile(filepath.Join(runDir, name), []byte("mesh"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "phill.par"), []byte("[GENERAL]\ndt = 0.01\n"), 0600))

	err := Create(context.Background(), runDir, Path(runDir, 0), Files{
		Case: "phill",
		Re2:  "phill.re2",
		Ma2:  "phill.ma2",
		Par:  "phill.par",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(runDir, NameFile))
	require.NoError(t, err)
	assert.Equal(t, "phill\n./session_00", string(data))

	dest, err := os.Readlink(filepath.Join(runDir, "session_00", "phill.re2"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "phill.re2"), dest)

	par, err := os.ReadFile(filepath.Join(runDir, "session_00", "phill.par"))
	require.NoError(t, err)
	assert.Contains(t, string(par), "dt = 0.01")

	t.Run("IsIdempotentForLinks", func(t *testing.T) {
		err := Create(context.Background(), runDir, "session_00", Files{Case: "phill", Re2: "phill.re2"})
		require.NoError(t, err)
	})

	t.Run("RequiresCase", func(t *testing.T) {
		err := Create(context.Background(), runDir, "session_01", Files{})
		require.ErrorIs(t, err, ErrInvalidCase)
	})
}
