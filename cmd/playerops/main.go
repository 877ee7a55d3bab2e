// Command playerops is the maintenance CLI for the player test corpus: it
// guards tracked file sizes, deduplicates inputs, and runs the player over
// every input, optionally inside a memory-capped systemd scope.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/backmassage/playerops/internal/config"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func init() {
	// -v is --verbose; the built-in version flag moves to -V.
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Aliases:            []string{"V"},
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to a process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// A missing .env is normal; it only feeds the PLAYEROPS_* layer.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "playerops: received interrupt, stopping after the current input")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := newApp(stdout, stderr).RunContext(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintf(stderr, "playerops: %s\n", msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(stderr, "playerops: %v\n", err)
	return 1
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "playerops",
		Usage:     "maintenance tooling for the player and its input corpus",
		Version:   fmt.Sprintf("%s (%s)", version, commit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     config.GlobalFlags(),
		Commands: []*cli.Command{
			sizeGuardCommand(),
			dedupCommand(),
			runCommand(),
			sandboxCommand(),
			checkCommand(),
			configCommand(),
		},
		// Exit codes are mapped in run so deferred cleanup still happens.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}
