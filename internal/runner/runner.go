package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/playerops/internal/config"
	"github.com/backmassage/playerops/internal/display"
	"github.com/backmassage/playerops/internal/logging"
	"github.com/backmassage/playerops/internal/naming"
	"github.com/backmassage/playerops/internal/sandbox"
)

// Run plays every input into <output>/<name>. The output directory is
// created when missing and must lie outside the input directory.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, l sandbox.Launcher) (RunStats, error) {
	if err := prepareOutput(cfg, false); err != nil {
		return RunStats{}, err
	}
	return runText(ctx, cfg, log, l)
}

// RunSandboxed is Run with a destructive clean of the output directory
// first. With cfg.Sandbox.Images it runs the image variant instead.
func RunSandboxed(ctx context.Context, cfg *config.Config, log *logging.Logger, l sandbox.Launcher) (RunStats, error) {
	if err := cfg.ValidateSandbox(); err != nil {
		return RunStats{}, err
	}
	warnIfNotRoot(log)
	if cfg.Sandbox.Images {
		return runImages(ctx, cfg, log, l)
	}
	if err := prepareOutput(cfg, true); err != nil {
		return RunStats{}, err
	}
	log.Info("Cleaned output directory %s", cfg.Runner.OutputDir)
	return runText(ctx, cfg, log, l)
}

// prepareOutput validates the input/output pair and leaves an output
// directory in place, emptied when clean is set.
func prepareOutput(cfg *config.Config, clean bool) error {
	inputAbs, err := absPath(cfg.Runner.InputDir)
	if err != nil {
		return fmt.Errorf("input not found: %s: %w", cfg.Runner.InputDir, err)
	}
	outputAbs, err := resolveTarget(cfg.Runner.OutputDir)
	if err != nil {
		return fmt.Errorf("cannot resolve output path %s: %w", cfg.Runner.OutputDir, err)
	}
	if err := config.ValidatePaths(inputAbs, outputAbs); err != nil {
		return fmt.Errorf("%w (choose an output path outside %s)", err, cfg.Runner.InputDir)
	}
	if clean {
		return cleanDir(cfg.Runner.OutputDir, inputAbs)
	}
	if err := os.MkdirAll(cfg.Runner.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	return nil
}

func runText(ctx context.Context, cfg *config.Config, log *logging.Logger, l sandbox.Launcher) (RunStats, error) {
	var stats RunStats

	files, err := Discover(cfg.Runner.InputDir)
	if err != nil {
		return stats, fmt.Errorf("input discovery failed: %w", err)
	}
	stats.Total = len(files)

	log = log.With("run", newRunID())
	log.Info("Found %d inputs in %s", stats.Total, cfg.Runner.InputDir)

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1
		playText(ctx, cfg, log, l, path, &stats)
	}

	logSummary(log, &stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("run interrupted: %w", err)
	}
	return stats, nil
}

// playText runs the player on one input with stdout captured into the
// matching output file. The file is kept whatever the exit status.
func playText(ctx context.Context, cfg *config.Config, log *logging.Logger, l sandbox.Launcher, path string, stats *RunStats) {
	name := filepath.Base(path)
	outPath := filepath.Join(cfg.Runner.OutputDir, name)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, name)

	if cfg.Runner.SkipExisting {
		if fi, err := os.Stat(outPath); err == nil && fi.Size() > 0 {
			log.Warn("Skip (exists): %s", name)
			stats.Skipped++
			return
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Error("Cannot create output file: %v", err)
		stats.Failed++
		return
	}
	res, err := l.Launch(ctx, sandbox.Invocation{
		Program: cfg.Runner.Player,
		Args:    []string{path},
		Stdout:  out,
		Stderr:  os.Stderr,
	})
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Error("Player failed on %s: %v", name, err)
		stats.Failed++
		return
	}

	var size int64
	if fi, err := os.Stat(outPath); err == nil {
		size = fi.Size()
	}
	stats.OutputBytes += size

	if res.ExitCode != 0 {
		log.Warn("%s exited with status %d on %s (output kept, %s)", exitSubject(l), res.ExitCode, name, display.FormatBytes(size))
		stats.NonZero++
		return
	}
	stats.Succeeded++
	log.Success("Played %s in %s (%s)", name, res.Duration.Round(time.Millisecond), display.FormatBytes(size))
}

// runImages is the image variant: each input gets an empty debugging
// directory named after its stem and the player writes there itself.
func runImages(ctx context.Context, cfg *config.Config, log *logging.Logger, l sandbox.Launcher) (RunStats, error) {
	var stats RunStats

	imagesAbs, err := absPath(cfg.Sandbox.ImagesDir)
	if err != nil {
		return stats, fmt.Errorf("images not found: %s: %w", cfg.Sandbox.ImagesDir, err)
	}
	if err := cleanDir(cfg.Sandbox.DebuggingDir, imagesAbs); err != nil {
		return stats, err
	}
	log.Info("Removed all debugging files.")

	files, err := Discover(cfg.Sandbox.ImagesDir)
	if err != nil {
		return stats, fmt.Errorf("image discovery failed: %w", err)
	}
	stats.Total = len(files)

	log = log.With("run", newRunID())
	log.Info("Found %d images in %s", stats.Total, cfg.Sandbox.ImagesDir)
	resolver := naming.NewCollisionResolver()

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1
		name := filepath.Base(path)
		log.Info("[%d/%d] %s", stats.Current, stats.Total, name)

		dirName := resolver.Resolve(path, naming.Stem(path))
		debugDir := filepath.Join(cfg.Sandbox.DebuggingDir, dirName)
		if err := os.Mkdir(debugDir, 0o755); err != nil {
			log.Error("Cannot create debugging directory: %v", err)
			stats.Failed++
			continue
		}
		log.Debug(cfg.General.Verbose, "Debugging path: %s", debugDir)

		res, err := l.Launch(ctx, sandbox.Invocation{
			Program: cfg.Runner.Player,
			Args:    []string{"--input", path, "--debugging-path", debugDir},
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		})
		switch {
		case err != nil:
			log.Error("Player failed on %s: %v", name, err)
			stats.Failed++
		case res.ExitCode != 0:
			log.Warn("%s exited with status %d on %s", exitSubject(l), res.ExitCode, name)
			stats.NonZero++
		default:
			stats.Succeeded++
			log.Success("Played %s in %s", name, res.Duration.Round(time.Millisecond))
		}
	}

	logSummary(log, &stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("run interrupted: %w", err)
	}
	return stats, nil
}

// exitSubject names what a non-zero status came from. systemd-run reports
// its own failures (a refused scope, a denied authentication) as a plain
// exit status, indistinguishable from the player's.
func exitSubject(l sandbox.Launcher) string {
	if _, ok := l.(sandbox.Scope); ok {
		return "Player or its systemd-run scope"
	}
	return "Player"
}

// newRunID returns a short identifier that tags every line of one run.
func newRunID() string {
	return uuid.NewString()[:8]
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d ok, %d non-zero exit, %d skipped, %d failed",
		stats.Succeeded, stats.NonZero, stats.Skipped, stats.Failed)
	log.Info("  Total inputs processed: %d of %d", stats.Current, stats.Total)
	if stats.OutputBytes > 0 {
		log.Info("  Output written: %s", display.FormatBytes(stats.OutputBytes))
	}
}
