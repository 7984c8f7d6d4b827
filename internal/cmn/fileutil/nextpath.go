package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NoSuffix is the suffix index reported by NextPath when the candidate path
// was returned unchanged.
const NoSuffix = -1

// NextPath returns a path that does not exist yet, derived from path by
// appending a two-digit integer suffix to its stem ("run.tar.gz" becomes
// "run_00.tar.gz", "run_01.tar.gz", ...). When forceSuffix is false and path
// does not exist, path is returned unchanged along with NoSuffix.
//
// The check is not atomic: two processes may compute the same path. Use
// CreateNextDir when the result is meant to become a directory.
func NextPath(path string, forceSuffix bool) (int, string, error) {
	if path == "" {
		return NoSuffix, "", ErrEmptyPath
	}
	if !forceSuffix && !FileExists(path) {
		return NoSuffix, path, nil
	}

	stem, ext := splitExtensions(path)
	for i := 0; ; i++ {
		candidate := withSuffix(stem, ext, i)
		if !FileExists(candidate) {
			return i, candidate, nil
		}
	}
}

// CreateNextDir allocates a suffixed directory like NextPath with a forced
// suffix, and creates it. Creation uses os.Mkdir so that a directory created
// concurrently by another process makes this call move on to the next suffix
// instead of sharing it.
func CreateNextDir(path string) (int, string, error) {
	if path == "" {
		return NoSuffix, "", ErrEmptyPath
	}

	stem, ext := splitExtensions(path)
	for i := 0; ; i++ {
		candidate := withSuffix(stem, ext, i)
		err := os.Mkdir(candidate, 0750)
		if err == nil {
			return i, candidate, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return NoSuffix, "", fmt.Errorf("failed to create directory %s: %w", candidate, err)
	}
}

func withSuffix(stem, ext string, i int) string {
	return fmt.Sprintf("%s_%02d%s", stem, i, ext)
}

// splitExtensions splits path into the part before its compound extension
// and the extension itself: "/a/b.tar.gz" -> ("/a/b", ".tar.gz").
// Names made only of a leading dot and a word (".snakemake") have no extension.
func splitExtensions(path string) (string, string) {
	dir, name := filepath.Split(filepath.Clean(path))
	if name == "" || strings.HasSuffix(name, ".") {
		return dir + name, ""
	}

	trimmed := strings.TrimLeft(name, ".")
	idx := strings.Index(trimmed, ".")
	if idx < 0 {
		return dir + name, ""
	}

	ext := trimmed[idx:]
	return dir + strings.TrimSuffix(name, ext), ext
}
