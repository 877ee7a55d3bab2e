package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Invocation describes one run of an external program. Nil writers discard
// the corresponding stream.
type Invocation struct {
	Program string
	Args    []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Result holds the outcome of a single invocation that ran to completion.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Launcher runs an Invocation and waits for it to finish.
type Launcher interface {
	Launch(ctx context.Context, inv Invocation) (Result, error)
}

// Direct runs the program as a plain child process.
type Direct struct{}

// Launch implements [Launcher].
func (Direct) Launch(ctx context.Context, inv Invocation) (Result, error) {
	return execute(ctx, inv.Program, inv.Args, inv.Stdout, inv.Stderr)
}

// execute starts name with args and waits. A non-zero exit is returned as
// Result.ExitCode with a nil error.
func execute(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("launch %s: %w", name, err)
}
