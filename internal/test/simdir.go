package test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SimDir is a simulation directory fixture. The zero layout created by
// NewSimDir is ready to restart: markers, task runner metadata, parameters
// pointing at an empty session_00.
type SimDir struct {
	Root string

	t *testing.T
}

// SimDirXML is the params_simul.xml written by NewSimDir. Placeholders are the
// session id and the session path.
const SimDirXML = `<?xml version="1.0" encoding="UTF-8"?>
<params solver="phill" NEW_DIR_RESULTS="True">
  <output session_id="%d" path_session="%s" HAS_TO_SAVE="False"/>
  <nek>
    <general start_from="" end_time="10" num_steps="0" dt="0.01"/>
    <chkpoint chkp_fnumber="1" read_chkpt="False"/>
  </nek>
</params>
`

// NewSimDir creates a simulation directory fixture under t.TempDir().
func NewSimDir(t *testing.T) *SimDir {
	t.Helper()

	s := &SimDir{Root: filepath.Join(t.TempDir(), "phill_run"), t: t}
	s.Mkdir(".snakemake")
	s.Touch("SIZE")
	s.Touch("nek5000")
	s.Mkdir("session_00")
	s.WriteParams(0, "session_00")
	return s
}

// Path joins elem to the fixture root.
func (s *SimDir) Path(elem ...string) string {
	return filepath.Join(append([]string{s.Root}, elem...)...)
}

// Mkdir creates a directory relative to the root.
func (s *SimDir) Mkdir(rel string) *SimDir {
	s.t.Helper()
	require.NoError(s.t, os.MkdirAll(s.Path(rel), 0750))
	return s
}

// Touch creates an empty file relative to the root.
func (s *SimDir) Touch(rel string) *SimDir {
	s.t.Helper()
	path := s.Path(rel)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(s.t, os.WriteFile(path, nil, 0600))
	return s
}

// Remove deletes a file or directory relative to the root.
func (s *SimDir) Remove(rel string) *SimDir {
	s.t.Helper()
	require.NoError(s.t, os.RemoveAll(s.Path(rel)))
	return s
}

// Lock places a lock file in .snakemake/locks.
func (s *SimDir) Lock() *SimDir {
	return s.Touch(filepath.Join(".snakemake", "locks", "0.input.lock"))
}

// WriteParams writes params_simul.xml recording the given session.
func (s *SimDir) WriteParams(id int, path string) *SimDir {
	s.t.Helper()
	content := fmt.Sprintf(SimDirXML, id, path)
	require.NoError(s.t, os.WriteFile(s.Path("params_simul.xml"), []byte(content), 0600))
	return s
}

// WriteFile writes content to a file relative to the root.
func (s *SimDir) WriteFile(rel, content string) *SimDir {
	s.t.Helper()
	path := s.Path(rel)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(s.t, os.WriteFile(path, []byte(content), 0600))
	return s
}
