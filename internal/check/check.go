// Package check provides system diagnostics (playerops check) and the
// pre-flight dependency validation (CheckDeps) run before each subcommand.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/playerops/internal/config"
	"github.com/backmassage/playerops/internal/display"
	"github.com/backmassage/playerops/internal/sandbox"
	"github.com/backmassage/playerops/internal/vcs"
)

// Sentinel errors returned by CheckDeps when a required program is missing.
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerNotExecutable = errors.New("player is not an executable file")
	ErrSystemdRunNotFound  = errors.New("systemd-run not found on PATH")
	ErrGitNotFound         = vcs.ErrGitNotFound
)

// Need selects which external programs CheckDeps verifies.
type Need uint8

const (
	NeedGit Need = 1 << iota
	NeedPlayer
	NeedSystemdRun
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// CheckDeps verifies the programs selected by need and returns the first
// sentinel error (wrapped with the offending path) on failure.
func CheckDeps(cfg *config.Config, need Need) error {
	if need&NeedGit != 0 {
		if _, err := exec.LookPath("git"); err != nil {
			return ErrGitNotFound
		}
	}
	if need&NeedPlayer != 0 {
		if err := checkPlayer(cfg.Runner.Player); err != nil {
			return err
		}
	}
	if need&NeedSystemdRun != 0 {
		if _, err := exec.LookPath(sandbox.SystemdRun); err != nil {
			return ErrSystemdRunNotFound
		}
	}
	return nil
}

// checkPlayer accepts a path (anything with a slash) or a bare name looked
// up on PATH, matching how exec resolves the program later.
func checkPlayer(player string) error {
	if !strings.Contains(player, "/") {
		if _, err := exec.LookPath(player); err != nil {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
		}
		return nil
	}
	fi, err := os.Stat(player)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	if !fi.Mode().IsRegular() || fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotExecutable, player)
	}
	return nil
}

// RunCheck prints availability of git, the player and systemd-run, the
// effective user, and physical memory against the configured cap. It
// returns false when a program needed by any subcommand is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkProgram(log, "git", "--version")
	if err := checkPlayer(cfg.Runner.Player); err != nil {
		log.Error("%v", err)
		ok = false
	} else {
		log.Success("player: %s", cfg.Runner.Player)
	}
	if !checkProgram(log, sandbox.SystemdRun, "--version") {
		ok = false
	}

	if uid := os.Geteuid(); uid == 0 {
		log.Info("Effective UID: 0 (root)")
	} else {
		log.Warn("Effective UID: %d (not root; sandboxed runs may prompt for authentication)", uid)
	}

	checkMemory(cfg, log)
	return ok
}

// checkProgram verifies name is on PATH and logs the first line of its
// version output.
func checkProgram(log Logger, name string, versionArgs ...string) bool {
	if _, err := exec.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return false
	}
	out, err := exec.Command(name, versionArgs...).Output()
	if err != nil {
		log.Warn("%s found but %s failed: %v", name, strings.Join(versionArgs, " "), err)
		return true
	}
	log.Success("%s: %s", name, firstLine(string(out)))
	return true
}

func checkMemory(cfg *config.Config, log Logger) {
	limit, err := cfg.MemoryMaxBytes()
	if err != nil {
		log.Error("%v", err)
		return
	}
	total, ok := physicalMemory()
	if !ok {
		log.Info("Memory cap: %s (physical memory unknown)", display.FormatBytes(int64(limit)))
		return
	}
	if limit > total {
		log.Warn("Memory cap %s exceeds physical memory %s",
			display.FormatBytes(int64(limit)), display.FormatBytes(int64(total)))
		return
	}
	log.Success("Memory cap %s of %s physical", display.FormatBytes(int64(limit)), display.FormatBytes(int64(total)))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}
