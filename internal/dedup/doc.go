// Package dedup removes byte-identical files from an input directory and
// renames every survivor to <sha512-hex>.txt.
//
// A pass is three steps over one directory listing: hash every regular file
// and index the first name seen per hash, delete the later duplicates, then
// rename each unique file to its canonical name. The pass is idempotent and
// has no rollback; rerunning after a crash converges because every step is
// content-addressed.
//
// Types:
//   - Options (DryRun, Verbose)
//   - Result (Scanned, Removed, Renamed; Changed method)
//   - Rename (From, To)
//
// Functions:
//   - Run(dir, opts, log) → Result
//   - HashFile(path) → lowercase hex SHA-512
//   - CanonicalName(hash) → "<hash>.txt"
//
// Regular files and symlinks to regular files are inputs; subdirectories
// and other entries are left untouched.
package dedup
