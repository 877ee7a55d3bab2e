package sandbox

import (
	"context"
	"strconv"
)

// SystemdRun is the service manager front end used by [Scope].
const SystemdRun = "systemd-run"

// Scope runs each invocation inside a transient systemd scope with a
// MemoryMax limit. The scope ends when the program exits.
type Scope struct {
	// MemoryMax is the cap in bytes passed as -p MemoryMax=<bytes>.
	MemoryMax uint64
	// User selects the per-user service manager (--user).
	User bool
	// Binary overrides the systemd-run executable; empty means SystemdRun.
	Binary string
}

// Launch implements [Launcher].
func (s Scope) Launch(ctx context.Context, inv Invocation) (Result, error) {
	bin := s.Binary
	if bin == "" {
		bin = SystemdRun
	}
	return execute(ctx, bin, s.Args(inv), inv.Stdout, inv.Stderr)
}

// Args returns the systemd-run argument list that wraps inv, e.g.
//
//	--user --scope -p MemoryMax=17179869184 --quiet -- ./player in/a
func (s Scope) Args(inv Invocation) []string {
	args := make([]string, 0, 7+len(inv.Args))
	if s.User {
		args = append(args, "--user")
	}
	args = append(args,
		"--scope",
		"-p", "MemoryMax="+strconv.FormatUint(s.MemoryMax, 10),
		"--quiet",
		"--",
		inv.Program,
	)
	return append(args, inv.Args...)
}
