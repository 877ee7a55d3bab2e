// Package runner feeds every input file to the player program, one at a
// time, and reports batch statistics. Run is the plain variant; RunSandboxed
// cleans its output first and is meant to be paired with a sandbox.Scope
// launcher.
//
// Types:
//   - RunStats (Total, Current, Succeeded, NonZero, Skipped, Failed,
//     OutputBytes; Healthy method)
//
// Functions:
//   - Run(ctx, cfg, log, launcher) → RunStats
//     Plain batch: validate paths → discover → for each input: create
//     <output>/<name> → player <input> with stdout into it → stats.
//   - RunSandboxed(ctx, cfg, log, launcher) → RunStats
//     Non-root warning → guarded clean of the output (or debugging) root
//     → the plain loop, or the image loop with one debugging directory
//     per input.
//   - Discover(dir) → []string
//     Regular files directly inside dir, sorted by name.
//
// A player that exits non-zero keeps its output and is counted in
// RunStats.NonZero; only launch failures count as Failed.
package runner
