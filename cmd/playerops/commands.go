package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/backmassage/playerops/internal/check"
	"github.com/backmassage/playerops/internal/config"
	"github.com/backmassage/playerops/internal/dedup"
	"github.com/backmassage/playerops/internal/display"
	"github.com/backmassage/playerops/internal/logging"
	"github.com/backmassage/playerops/internal/runner"
	"github.com/backmassage/playerops/internal/sandbox"
	"github.com/backmassage/playerops/internal/sizeguard"
	"github.com/backmassage/playerops/internal/vcs"
)

// Exit codes used by sizeguard so hooks can tell a policy violation from a
// broken check.
const (
	exitViolation = 1
	exitError     = 2
)

// session is the loaded configuration and logger for one subcommand.
type session struct {
	cfg config.Config
	log *logging.Logger
}

// openSession loads config (defaults, file, environment), applies global and
// subcommand flags, validates, and opens the logger. The caller must Close.
func openSession(c *cli.Context, apply func(*cli.Context, *config.Config)) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	config.ApplyGlobalFlags(c, &cfg)
	if apply != nil {
		apply(c, &cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log}, nil
}

func (s *session) Close() { _ = s.log.Close() }

func sizeGuardCommand() *cli.Command {
	return &cli.Command{
		Name:  "sizeguard",
		Usage: "Fail when a git-tracked file is larger than the size limit",
		Flags: config.SizeGuardFlags(),
		Action: func(c *cli.Context) error {
			s, err := openSession(c, config.ApplySizeGuardFlags)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}
			defer s.Close()

			if err := check.CheckDeps(&s.cfg, check.NeedGit); err != nil {
				return cli.Exit(err.Error(), exitError)
			}
			report, err := sizeguard.Check(c.Context, vcs.Git{}, s.cfg.SizeGuard.Root, s.cfg.SizeGuard.MaxSize)
			if err != nil {
				return cli.Exit(err.Error(), exitError)
			}

			for _, v := range report.Violations {
				fmt.Fprintln(c.App.Writer, report.Describe(v))
			}
			s.log.Debug(s.cfg.General.Verbose, "Checked %d tracked files; largest %s (%s)",
				report.Checked, report.Largest.Path, display.FormatBytes(report.Largest.Size))
			if !report.OK() {
				return cli.Exit("", exitViolation)
			}
			headroom := report.MaxSize - report.Largest.Size
			s.log.Debug(s.cfg.General.Verbose, "Headroom below limit: %s", display.FormatBytesWithSign(headroom))
			return nil
		},
	}
}

func dedupCommand() *cli.Command {
	return &cli.Command{
		Name:  "dedup",
		Usage: "Remove duplicate inputs and rename the rest to <sha512>.txt",
		Flags: config.DedupFlags(),
		Action: func(c *cli.Context) error {
			s, err := openSession(c, config.ApplyDedupFlags)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.cfg.Dedup.DryRun {
				s.log.Warn("DRY RUN: no files will be changed")
			}
			_, err = dedup.Run(s.cfg.Dedup.InputDir, dedup.Options{
				DryRun:  s.cfg.Dedup.DryRun,
				Verbose: s.cfg.General.Verbose,
			}, s.log)
			return err
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the player on every input, writing its stdout to the output directory",
		Flags: config.RunFlags(),
		Action: func(c *cli.Context) error {
			s, err := openSession(c, config.ApplyRunFlags)
			if err != nil {
				return err
			}
			defer s.Close()

			display.PrintBanner(c.App.Writer)
			if err := check.CheckDeps(&s.cfg, check.NeedPlayer); err != nil {
				return err
			}
			s.log.Info("=== playerops v%s ===", version)
			s.log.Info("In:  %s", s.cfg.Runner.InputDir)
			s.log.Info("Out: %s", s.cfg.Runner.OutputDir)

			stats, err := runner.Run(c.Context, &s.cfg, s.log, sandbox.Direct{})
			return batchResult(&s.cfg, &stats, err)
		},
	}
}

func sandboxCommand() *cli.Command {
	return &cli.Command{
		Name:  "sandbox",
		Usage: "Clean the output, then run the player on every input inside a memory-capped systemd scope",
		Flags: config.SandboxFlags(),
		Action: func(c *cli.Context) error {
			s, err := openSession(c, config.ApplySandboxFlags)
			if err != nil {
				return err
			}
			defer s.Close()

			display.PrintBanner(c.App.Writer)
			if err := check.CheckDeps(&s.cfg, check.NeedPlayer|check.NeedSystemdRun); err != nil {
				return err
			}
			limit, err := s.cfg.MemoryMaxBytes()
			if err != nil {
				return err
			}
			scope := sandbox.Scope{MemoryMax: limit, User: s.cfg.Sandbox.UserScope}

			s.log.Info("=== playerops v%s (sandbox) ===", version)
			if s.cfg.Sandbox.Images {
				s.log.Info("Images:    %s", s.cfg.Sandbox.ImagesDir)
				s.log.Info("Debugging: %s", s.cfg.Sandbox.DebuggingDir)
			} else {
				s.log.Info("In:  %s", s.cfg.Runner.InputDir)
				s.log.Info("Out: %s", s.cfg.Runner.OutputDir)
			}
			s.log.Info("Memory cap: %s", display.FormatBytes(int64(limit)))

			stats, err := runner.RunSandboxed(c.Context, &s.cfg, s.log, scope)
			return batchResult(&s.cfg, &stats, err)
		},
	}
}

// batchResult turns runner output into the subcommand error.
func batchResult(cfg *config.Config, stats *runner.RunStats, err error) error {
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be run", stats.Failed, stats.Total)
	}
	if !stats.Healthy(cfg.Runner.Strict) {
		return fmt.Errorf("%d inputs exited non-zero (strict mode)", stats.NonZero)
	}
	return nil
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Report git, player and systemd-run availability and the memory budget",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "player", Aliases: []string{"p"}, Usage: "Path to the player executable"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c, func(c *cli.Context, cfg *config.Config) {
				if c.IsSet("player") {
					cfg.Runner.Player = c.String("player")
				}
			})
			if err != nil {
				return err
			}
			defer s.Close()

			display.PrintBanner(c.App.Writer)
			if !check.RunCheck(&s.cfg, s.log) {
				return errors.New("system check found missing programs")
			}
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a commented configuration template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   config.DefaultFile,
					},
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.String("output")
					if err := config.InitConfig(path, c.Bool("force")); err != nil {
						return fmt.Errorf("failed to initialize config: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "Created configuration file at %s\n", path)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Load and validate the configuration",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					if err := cfg.Validate(); err != nil {
						return fmt.Errorf("invalid configuration: %w", err)
					}
					fmt.Fprintln(c.App.Writer, "Configuration is valid")
					return nil
				},
			},
		},
	}
}
