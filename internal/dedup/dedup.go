package dedup

import (
	"fmt"
	"os"
	"path/filepath"
)

// stagingSuffix marks files parked under a temporary name while a rename
// cycle is broken up.
const stagingSuffix = ".dedup-tmp"

// Logger is the minimal logging interface needed by Run.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Options control a pass.
type Options struct {
	DryRun  bool // Report actions without touching the filesystem.
	Verbose bool
}

// Rename records one file moved to its canonical name (names, not paths).
type Rename struct {
	From string
	To   string
}

// Result summarizes a pass. Removed and Renamed hold file names in the
// order the actions were taken.
type Result struct {
	Scanned int
	Removed []string
	Renamed []Rename
}

// Changed reports whether the pass touched (or, in dry-run, would touch)
// the directory.
func (r Result) Changed() bool {
	return len(r.Removed) > 0 || len(r.Renamed) > 0
}

// Run performs one deduplication pass over dir.
func Run(dir string, opts Options, log Logger) (Result, error) {
	var res Result

	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, err
	}

	// --- Pass 1: hash and index ---
	index := make(map[string]string) // content hash → first-seen name
	var order []string               // hashes in first-seen order
	var duplicates []string
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
		if !isRegular(dir, e) {
			log.Debug(opts.Verbose, "Skipping non-regular entry: %s", e.Name())
			continue
		}
		res.Scanned++

		hash, err := HashFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return res, err
		}
		if first, seen := index[hash]; seen {
			log.Warn("Found redundant input: %s collides with %s", e.Name(), first)
			duplicates = append(duplicates, e.Name())
			continue
		}
		index[hash] = e.Name()
		order = append(order, hash)
	}

	// --- Pass 2: remove duplicates ---
	for _, name := range duplicates {
		target := filepath.Join(dir, name)
		if opts.DryRun {
			log.Info("[DRY] Would remove %s", target)
		} else {
			if err := os.Remove(target); err != nil {
				return res, fmt.Errorf("remove duplicate: %w", err)
			}
			log.Info("Removed %s.", target)
		}
		delete(present, name)
		res.Removed = append(res.Removed, name)
	}

	// --- Pass 3: canonical names ---
	var pending []Rename
	conflict := false
	for _, hash := range order {
		r := Rename{From: index[hash], To: CanonicalName(hash)}
		if r.From == r.To {
			continue
		}
		if present[r.To] {
			conflict = true
		}
		pending = append(pending, r)
	}

	// sources tracks where each pending file currently lives.
	sources := make([]string, len(pending))
	for i, r := range pending {
		sources[i] = r.From
	}
	if conflict && !opts.DryRun {
		// Some destination is still held by another file awaiting its own
		// rename. Park every pending file first so no content is overwritten.
		for i, r := range pending {
			staged := "." + r.To + stagingSuffix
			if err := os.Rename(filepath.Join(dir, r.From), filepath.Join(dir, staged)); err != nil {
				return res, fmt.Errorf("stage rename: %w", err)
			}
			log.Debug(opts.Verbose, "Staged %s as %s", r.From, staged)
			sources[i] = staged
		}
	}

	for i, r := range pending {
		original := filepath.Join(dir, r.From)
		destination := filepath.Join(dir, r.To)
		if opts.DryRun {
			log.Info("[DRY] Would move %s to %s", original, destination)
		} else {
			if err := os.Rename(filepath.Join(dir, sources[i]), destination); err != nil {
				return res, fmt.Errorf("rename %s to canonical name: %w", r.From, err)
			}
			log.Info("Moved %s to %s.", original, destination)
		}
		res.Renamed = append(res.Renamed, r)
	}

	if res.Changed() {
		log.Success("Deduplicated %d files: %d removed, %d renamed",
			res.Scanned, len(res.Removed), len(res.Renamed))
	} else {
		log.Success("No changes: %d files already unique and canonically named", res.Scanned)
	}
	return res, nil
}

// isRegular reports whether e is a regular file or a symlink to one. A
// linked input is renamed like any other; its target is left alone.
func isRegular(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}
