package config

// This file defines the urfave/cli flags for each subcommand and copies the
// values the user actually passed into a loaded Config. Flags only override
// when set, so file and environment values hold otherwise.

import (
	"github.com/urfave/cli/v2"
)

// GlobalFlags are accepted before any subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load configuration from `FILE` (default: ./" + DefaultFile + " when present)",
		},
		&cli.BoolFlag{Name: "color", Usage: "Force colored logs"},
		&cli.BoolFlag{Name: "no-color", Usage: "Disable colored logs"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Usage: "Append logs to `FILE`"},
	}
}

// SizeGuardFlags registers --root and --max-size.
func SizeGuardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "root", Usage: "Repository working tree to check"},
		&cli.Int64Flag{Name: "max-size", Usage: "Largest allowed tracked file in bytes"},
	}
}

// DedupFlags registers --input and --dry-run.
func DedupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input directory to deduplicate"},
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"d"}, Usage: "Report actions without touching files"},
	}
}

// RunFlags registers the plain batch runner flags.
func RunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "player", Aliases: []string{"p"}, Usage: "Path to the player executable"},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input directory"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
		&cli.BoolFlag{Name: "skip-existing", Usage: "Skip inputs whose output already exists and is non-empty"},
		&cli.BoolFlag{Name: "strict", Usage: "Exit 1 if any player run exits non-zero"},
	}
}

// SandboxFlags registers the sandboxed runner flags, including the image variant.
func SandboxFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "player", Aliases: []string{"p"}, Usage: "Path to the player executable"},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input directory (images directory with --images)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (cleaned before the run)"},
		&cli.BoolFlag{Name: "images", Usage: "Image variant: per-input debugging directories"},
		&cli.StringFlag{Name: "debugging-dir", Usage: "Debugging root for --images (cleaned before the run)"},
		&cli.StringFlag{Name: "memory-max", Usage: "Memory cap for each player scope (e.g. 16GiB)"},
		&cli.BoolFlag{Name: "no-user-scope", Usage: "Launch scopes in the system manager instead of --user"},
		&cli.BoolFlag{Name: "strict", Usage: "Exit 1 if any player run exits non-zero"},
	}
}

// ApplyGlobalFlags copies display and logging flags into cfg.
func ApplyGlobalFlags(c *cli.Context, cfg *Config) {
	if c.Bool("no-color") {
		cfg.General.Color = ColorNever
	} else if c.Bool("color") {
		cfg.General.Color = ColorAlways
	}
	if c.IsSet("verbose") {
		cfg.General.Verbose = c.Bool("verbose")
	}
	if c.IsSet("log") {
		cfg.General.LogFile = c.String("log")
	}
}

// ApplySizeGuardFlags copies sizeguard flags into cfg.
func ApplySizeGuardFlags(c *cli.Context, cfg *Config) {
	if c.IsSet("root") {
		cfg.SizeGuard.Root = c.String("root")
	}
	if c.IsSet("max-size") {
		cfg.SizeGuard.MaxSize = c.Int64("max-size")
	}
}

// ApplyDedupFlags copies dedup flags into cfg.
func ApplyDedupFlags(c *cli.Context, cfg *Config) {
	if c.IsSet("input") {
		cfg.Dedup.InputDir = NormalizeDirArg(c.String("input"))
	}
	if c.IsSet("dry-run") {
		cfg.Dedup.DryRun = c.Bool("dry-run")
	}
}

// ApplyRunFlags copies the plain runner flags into cfg.
func ApplyRunFlags(c *cli.Context, cfg *Config) {
	applyPlayerFlags(c, cfg)
	if c.IsSet("input") {
		cfg.Runner.InputDir = NormalizeDirArg(c.String("input"))
	}
	if c.IsSet("skip-existing") {
		cfg.Runner.SkipExisting = c.Bool("skip-existing")
	}
}

// ApplySandboxFlags copies the sandboxed runner flags into cfg. With
// --images, --input names the images directory.
func ApplySandboxFlags(c *cli.Context, cfg *Config) {
	applyPlayerFlags(c, cfg)
	if c.IsSet("images") {
		cfg.Sandbox.Images = c.Bool("images")
	}
	if c.IsSet("input") {
		if cfg.Sandbox.Images {
			cfg.Sandbox.ImagesDir = NormalizeDirArg(c.String("input"))
		} else {
			cfg.Runner.InputDir = NormalizeDirArg(c.String("input"))
		}
	}
	if c.IsSet("debugging-dir") {
		cfg.Sandbox.DebuggingDir = NormalizeDirArg(c.String("debugging-dir"))
	}
	if c.IsSet("memory-max") {
		cfg.Sandbox.MemoryMax = c.String("memory-max")
	}
	if c.Bool("no-user-scope") {
		cfg.Sandbox.UserScope = false
	}
}

func applyPlayerFlags(c *cli.Context, cfg *Config) {
	if c.IsSet("player") {
		cfg.Runner.Player = c.String("player")
	}
	if c.IsSet("output") {
		cfg.Runner.OutputDir = NormalizeDirArg(c.String("output"))
	}
	if c.IsSet("strict") {
		cfg.Runner.Strict = c.Bool("strict")
	}
}
