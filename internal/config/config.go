// Package config holds runtime configuration: built-in defaults, the layered
// koanf loader (defaults → TOML file → PLAYEROPS_* environment), CLI flag
// overrides, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is read when no --config path is given and the file exists.
	DefaultFile = "playerops.toml"
	// EnvPrefix selects the environment variables layered over the file.
	// PLAYEROPS_RUNNER_INPUT_DIR maps to runner.input_dir.
	EnvPrefix = "PLAYEROPS_"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings, one section per utility. It is built by
// [DefaultConfig] or [Load] and then adjusted by the flag helpers in flags.go
// before being passed (by pointer) to packages that need it.
type Config struct {
	General   General   `koanf:"general"`
	SizeGuard SizeGuard `koanf:"sizeguard"`
	Dedup     Dedup     `koanf:"dedup"`
	Runner    Runner    `koanf:"runner"`
	Sandbox   Sandbox   `koanf:"sandbox"`
}

// General holds display and logging settings shared by every subcommand.
type General struct {
	Color   ColorMode `koanf:"color"`    // Default: "auto".
	Verbose bool      `koanf:"verbose"`  // Enables Debug lines.
	LogFile string    `koanf:"log_file"` // Optional append-only log file.
}

// SizeGuard configures the tracked-file size check.
type SizeGuard struct {
	Root    string `koanf:"root"`     // Repository working tree. Default: ".".
	MaxSize int64  `koanf:"max_size"` // Inclusive limit in bytes. Default: 131072.
}

// Dedup configures the content deduplication pass.
type Dedup struct {
	InputDir string `koanf:"input_dir"` // Default: "../input".
	DryRun   bool   `koanf:"dry_run"`
}

// Runner configures the player batch runs (plain and sandboxed).
type Runner struct {
	Player       string `koanf:"player"`        // Default: "./player".
	InputDir     string `koanf:"input_dir"`     // Default: "../input".
	OutputDir    string `koanf:"output_dir"`    // Default: "../output".
	SkipExisting bool   `koanf:"skip_existing"` // Resume: skip inputs with non-empty output.
	Strict       bool   `koanf:"strict"`        // Exit 1 when any player run exits non-zero.
}

// Sandbox configures the systemd scope wrapper and the image variant.
type Sandbox struct {
	MemoryMax    string `koanf:"memory_max"`    // Human-readable cap. Default: "16GiB".
	UserScope    bool   `koanf:"user_scope"`    // Pass --user to systemd-run. Default: true.
	Images       bool   `koanf:"images"`        // Image variant (debugging dirs).
	ImagesDir    string `koanf:"images_dir"`    // Default: "../images".
	DebuggingDir string `koanf:"debugging_dir"` // Default: "./debugging".
}

// defaults is the base koanf layer. Keys use the same dotted paths as the
// TOML file and the environment mapping.
var defaults = map[string]interface{}{
	"general.color":         string(ColorAuto),
	"general.verbose":       false,
	"general.log_file":      "",
	"sizeguard.root":        ".",
	"sizeguard.max_size":    int64(128 * 1024),
	"dedup.input_dir":       "../input",
	"dedup.dry_run":         false,
	"runner.player":         "./player",
	"runner.input_dir":      "../input",
	"runner.output_dir":     "../output",
	"runner.skip_existing":  false,
	"runner.strict":         false,
	"sandbox.memory_max":    "16GiB",
	"sandbox.user_scope":    true,
	"sandbox.images":        false,
	"sandbox.images_dir":    "../images",
	"sandbox.debugging_dir": "./debugging",
}

// DefaultConfig returns the built-in defaults without touching the
// filesystem or the environment.
func DefaultConfig() Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults, "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return cfg
}

// Load builds a Config from defaults, then the TOML file, then PLAYEROPS_*
// environment variables. An explicit path must exist; with an empty path
// DefaultFile is used only when present.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("config defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	cfg.normalizeDirs()
	return cfg, nil
}

// envKey maps PLAYEROPS_SECTION_SOME_KEY to section.some_key. Only the first
// underscore separates the section so multi-word keys survive.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) normalizeDirs() {
	c.Dedup.InputDir = NormalizeDirArg(c.Dedup.InputDir)
	c.Runner.InputDir = NormalizeDirArg(c.Runner.InputDir)
	c.Runner.OutputDir = NormalizeDirArg(c.Runner.OutputDir)
	c.Sandbox.ImagesDir = NormalizeDirArg(c.Sandbox.ImagesDir)
	c.Sandbox.DebuggingDir = NormalizeDirArg(c.Sandbox.DebuggingDir)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, sizes, and required paths for every section.
func (c *Config) Validate() error {
	switch c.General.Color {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.General.Color)
	}

	if c.SizeGuard.MaxSize <= 0 {
		return fmt.Errorf("sizeguard max_size must be positive (got %d)", c.SizeGuard.MaxSize)
	}
	if c.SizeGuard.Root == "" {
		return errors.New("sizeguard root must not be empty")
	}
	if c.Dedup.InputDir == "" {
		return errors.New("dedup input_dir must not be empty")
	}
	if c.Runner.Player == "" {
		return errors.New("runner player must not be empty")
	}
	if c.Runner.InputDir == "" || c.Runner.OutputDir == "" {
		return errors.New("runner needs both input_dir and output_dir")
	}
	if _, err := c.MemoryMaxBytes(); err != nil {
		return err
	}
	if c.Sandbox.ImagesDir == "" || c.Sandbox.DebuggingDir == "" {
		return errors.New("sandbox needs both images_dir and debugging_dir")
	}
	return nil
}

// ValidateSandbox adds the checks that only apply to the sandboxed runner.
// Its output is wiped before every run, so resuming is meaningless there.
func (c *Config) ValidateSandbox() error {
	if c.Runner.SkipExisting {
		return errors.New("skip_existing cannot be combined with the sandbox runner (its output is cleaned first)")
	}
	return nil
}

// MemoryMaxBytes parses Sandbox.MemoryMax ("16GiB", "8G", "512MiB", or a
// plain byte count). Single-letter suffixes follow systemd and mean powers
// of 1024.
func (c *Config) MemoryMaxBytes() (uint64, error) {
	raw := strings.TrimSpace(c.Sandbox.MemoryMax)
	if raw == "" {
		return 0, errors.New("sandbox memory_max must not be empty")
	}
	if last := raw[len(raw)-1]; strings.ContainsRune("KMGTkmgt", rune(last)) {
		raw = raw[:len(raw)-1] + strings.ToUpper(string(last)) + "iB"
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid sandbox memory_max %q: %w", c.Sandbox.MemoryMax, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("sandbox memory_max must be positive (got %q)", c.Sandbox.MemoryMax)
	}
	return n, nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so a run never feeds on its own output.
// Both arguments must be absolute, symlink-resolved paths.
func ValidatePaths(inputAbs, outputAbs string) error {
	if isWithin(outputAbs, inputAbs) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

// ValidateClean guards a destructive RemoveAll of target. It refuses the
// filesystem root, the working directory, and any ancestor of (or equal to)
// a protected directory. All arguments must be absolute, symlink-resolved paths.
func ValidateClean(targetAbs, cwdAbs string, protected ...string) error {
	if targetAbs == string(filepath.Separator) {
		return errors.New("refusing to clean the filesystem root")
	}
	if targetAbs == cwdAbs || isWithin(cwdAbs, targetAbs) {
		return fmt.Errorf("refusing to clean %s: it contains the working directory", targetAbs)
	}
	for _, p := range protected {
		if isWithin(p, targetAbs) {
			return fmt.Errorf("refusing to clean %s: it contains %s", targetAbs, p)
		}
	}
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	sep := string(filepath.Separator)
	return path == dir || strings.HasPrefix(path+sep, strings.TrimSuffix(dir, sep)+sep)
}

// InitConfig writes a commented configuration template to path. An existing
// file is only replaced when force is set.
func InitConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(template), 0o644)
}

const template = `# playerops configuration
# Every key can also be set through the environment, e.g.
# PLAYEROPS_RUNNER_INPUT_DIR=../input

[general]
color = "auto"      # auto | always | never
verbose = false
log_file = ""

[sizeguard]
root = "."
max_size = 131072   # bytes; larger tracked files fail the check

[dedup]
input_dir = "../input"
dry_run = false

[runner]
player = "./player"
input_dir = "../input"
output_dir = "../output"
skip_existing = false
strict = false

[sandbox]
memory_max = "16GiB"
user_scope = true
images = false
images_dir = "../images"
debugging_dir = "./debugging"
`
