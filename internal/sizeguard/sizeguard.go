// Package sizeguard rejects oversized files tracked by version control.
package sizeguard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/playerops/internal/vcs"
)

// DefaultMaxSize is the largest allowed tracked file (128 KiB). Files of
// exactly this size pass.
const DefaultMaxSize int64 = 128 * 1024

// TrackedFile is a path known to version control and its size in bytes.
type TrackedFile struct {
	Path string
	Size int64
}

// Report is the outcome of one check. Violations keep listing order.
type Report struct {
	MaxSize    int64
	Checked    int
	Largest    TrackedFile
	Violations []TrackedFile
}

// OK reports whether no tracked file exceeded the limit.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Describe renders the diagnostic line for one offending file.
func (r Report) Describe(f TrackedFile) string {
	return fmt.Sprintf("%s (%d bytes) is over the maximum size of %d bytes.", f.Path, f.Size, r.MaxSize)
}

// Check lists tracked files under root and compares each size against
// maxSize. Listing and stat failures abort the check; a tracked path that
// was deleted from the working tree is such a failure.
func Check(ctx context.Context, lister vcs.Lister, root string, maxSize int64) (Report, error) {
	report := Report{MaxSize: maxSize}

	paths, err := lister.ListTracked(ctx, root)
	if err != nil {
		return report, err
	}

	for _, p := range paths {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		fi, err := os.Stat(filepath.Join(root, p))
		if err != nil {
			return report, fmt.Errorf("size of tracked file %s: %w", p, err)
		}
		f := TrackedFile{Path: p, Size: fi.Size()}
		report.Checked++
		if f.Size > report.Largest.Size || report.Largest.Path == "" {
			report.Largest = f
		}
		if f.Size > maxSize {
			report.Violations = append(report.Violations, f)
		}
	}
	return report, nil
}
