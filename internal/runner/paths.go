package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/playerops/internal/config"
	"github.com/backmassage/playerops/internal/logging"
)

// absPath returns the absolute, symlink-resolved path. The directory must exist.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// resolveTarget is absPath for a directory that may not exist yet: the
// parent is resolved instead and the base name appended.
func resolveTarget(path string) (string, error) {
	abs, err := absPath(path)
	if err == nil {
		return abs, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	abs, err = filepath.Abs(path)
	if err != nil {
		return "", err
	}
	parent, err := absPath(filepath.Dir(abs))
	if err != nil {
		return filepath.Clean(abs), nil
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// cleanDir removes dir with everything below it and recreates it empty.
// It refuses the targets rejected by [config.ValidateClean].
func cleanDir(dir string, protected ...string) error {
	target, err := resolveTarget(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if resolved, err := filepath.EvalSymlinks(cwd); err == nil {
		cwd = resolved
	}
	if err := config.ValidateClean(target, cwd, protected...); err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("recreate %s: %w", dir, err)
	}
	return nil
}

// warnIfNotRoot prints the service-manager authentication warning shown
// before sandboxed runs.
func warnIfNotRoot(log *logging.Logger) {
	if os.Geteuid() == 0 {
		return
	}
	log.Warn("Not running as root: the service manager may ask for authentication repeatedly.")
}
