// Package sandbox launches the player program, either directly or inside a
// transient systemd scope that caps its memory.
//
// Types:
//   - Invocation (Program, Args, Stdout, Stderr)
//   - Result (ExitCode, Duration)
//   - Launcher interface, implemented by Direct and Scope
//
// A player that runs and exits non-zero is not an error: the exit status is
// reported in Result.ExitCode. Launch returns an error only when the process
// could not be started or was killed by context cancellation.
package sandbox
