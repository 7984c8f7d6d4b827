// Package session manages the numbered output directories ("sessions") of a
// simulation run directory.
package session

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// Prefix is the base name sessions are allocated from: session_00, session_01, ...
const Prefix = "session"

// NameFile is written in the run directory and tells the solver which case
// and session directory to use.
const NameFile = "SESSION.NAME"

var reSessionDir = regexp.MustCompile(`^` + Prefix + `_(\d+)$`)

// Name returns the directory name of session id.
func Name(id int) string {
	return fmt.Sprintf("%s_%02d", Prefix, id)
}

// Path returns the directory of session id inside runDir.
func Path(runDir string, id int) string {
	return filepath.Join(runDir, Name(id))
}

// ParsePath splits a path pointing at a session directory into its run
// directory and session id. ok is false when p is not a session directory,
// in which case p is returned as the run directory.
func ParsePath(p string) (runDir string, id int, ok bool) {
	clean := filepath.Clean(p)
	m := reSessionDir.FindStringSubmatch(filepath.Base(clean))
	if m == nil {
		return clean, 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return clean, 0, false
	}
	return filepath.Dir(clean), id, true
}
