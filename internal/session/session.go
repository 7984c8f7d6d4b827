package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/cmn/logger"
	"github.com/snek5000/snekctl/internal/cmn/logger/tag"
)

// ErrInvalidCase is returned when the case name is missing.
var ErrInvalidCase = errors.New("case name is required")

// Files lists the per-case inputs a session needs.
type Files struct {
	Case string // case name, written on the first line of SESSION.NAME
	Re2  string // mesh file, symlinked into the session
	Ma2  string // connectivity map, symlinked into the session
	Par  string // parameter file, copied into the session
}

// Create prepares sessionDir inside runDir for a solver run. It writes
// SESSION.NAME with a path relative to runDir (Nek5000 limits paths to 132
// characters), symlinks the mesh and map files and copies the par file so
// that the session can be rerun without recompiling.
func Create(ctx context.Context, runDir, sessionDir string, files Files) error {
	if files.Case == "" {
		return ErrInvalidCase
	}
	if !filepath.IsAbs(sessionDir) {
		sessionDir = filepath.Join(runDir, sessionDir)
	}
	if err := os.MkdirAll(sessionDir, 0750); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	rel, err := filepath.Rel(runDir, sessionDir)
	if err != nil {
		return fmt.Errorf("session %s is not inside %s: %w", sessionDir, runDir, err)
	}
	content := fmt.Sprintf("%s\n./%s", files.Case, filepath.ToSlash(rel))
	if err := os.WriteFile(filepath.Join(runDir, NameFile), []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", NameFile, err)
	}

	for _, name := range []string{files.Re2, files.Ma2} {
		if name == "" {
			continue
		}
		link := filepath.Join(sessionDir, name)
		if fileutil.FileExists(link) {
			logger.Debug(ctx, "Session input already linked", tag.File(link))
			continue
		}
		if err := fileutil.SymlinkRelative(filepath.Join(runDir, name), link); err != nil {
			return err
		}
	}

	if files.Par != "" {
		if err := fileutil.CopyFile(filepath.Join(runDir, files.Par), filepath.Join(sessionDir, files.Par)); err != nil {
			return fmt.Errorf("failed to copy par file: %w", err)
		}
	}

	logger.Info(ctx, "Session created", tag.Session(sessionDir))
	return nil
}
