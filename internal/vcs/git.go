// Package vcs lists the files tracked by version control. The git binary is
// the only backend; Lister exists so callers can be tested without one.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitNotFound is returned when the git binary cannot be located.
var ErrGitNotFound = errors.New("git not found on PATH")

// Lister enumerates tracked paths relative to a working tree root.
type Lister interface {
	ListTracked(ctx context.Context, root string) ([]string, error)
}

// Git lists tracked files with `git ls-files -z`.
type Git struct {
	// Binary defaults to "git" resolved through PATH.
	Binary string
}

func (g Git) binary() string {
	if g.Binary == "" {
		return "git"
	}
	return g.Binary
}

// ListTracked returns every path in the index of the repository at root,
// in git's order. NUL separation keeps unusual file names unquoted.
func (g Git) ListTracked(ctx context.Context, root string) ([]string, error) {
	bin, err := exec.LookPath(g.binary())
	if err != nil {
		return nil, ErrGitNotFound
	}

	cmd := exec.CommandContext(ctx, bin, "-C", root, "ls-files", "-z")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git ls-files in %s: %w", root, err)
		}
		return nil, fmt.Errorf("git ls-files in %s: %w: %s", root, err, msg)
	}
	return splitNUL(out), nil
}

// splitNUL splits NUL-terminated records, dropping empty ones.
func splitNUL(b []byte) []string {
	var paths []string
	for _, rec := range bytes.Split(b, []byte{0}) {
		if len(rec) == 0 {
			continue
		}
		paths = append(paths, string(rec))
	}
	return paths
}
