package restart

import (
	"path/filepath"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
)

// ResolvePath returns the absolute path of dir. A relative dir that does not
// exist is looked up under simulationsDir, the root where simulations are
// stored by default.
func ResolvePath(dir, simulationsDir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := fileutil.ResolvePath(dir)
	if err != nil {
		return "", err
	}
	if fileutil.FileExists(abs) || filepath.IsAbs(dir) || simulationsDir == "" {
		return abs, nil
	}

	root, err := fileutil.ResolvePath(simulationsDir)
	if err != nil {
		return abs, nil
	}
	if candidate := filepath.Join(root, dir); fileutil.FileExists(candidate) {
		return candidate, nil
	}
	return abs, nil
}
