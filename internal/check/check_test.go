package check

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/playerops/internal/config"
)

func TestCheckDeps_Player(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "player")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "not-exec")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0o644))

	tests := []struct {
		name   string
		player string
		want   error
	}{
		{"executable path", exe, nil},
		{"missing path", filepath.Join(dir, "absent"), ErrPlayerNotFound},
		{"not executable", plain, ErrPlayerNotExecutable},
		{"directory", dir + "/", ErrPlayerNotExecutable},
		{"bare name missing from PATH", "playerops-no-such-player", ErrPlayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Runner.Player = tt.player
			err := CheckDeps(&cfg, NeedPlayer)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckDeps_NothingNeeded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Runner.Player = filepath.Join(t.TempDir(), "absent")
	assert.NoError(t, CheckDeps(&cfg, 0))
}

func TestCheckDeps_Git(t *testing.T) {
	cfg := config.DefaultConfig()
	err := CheckDeps(&cfg, NeedGit)
	if _, lookErr := exec.LookPath("git"); lookErr != nil {
		assert.ErrorIs(t, err, ErrGitNotFound)
		return
	}
	assert.NoError(t, err)
}

func TestCheckDeps_SystemdRunMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.DefaultConfig()
	assert.ErrorIs(t, CheckDeps(&cfg, NeedSystemdRun), ErrSystemdRunNotFound)
}

func TestRunCheck_ReportsMissingPrograms(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Runner.Player = filepath.Join(t.TempDir(), "absent")

	log := &recordLogger{}
	assert.False(t, RunCheck(&cfg, log))
	assert.True(t, log.has("ERROR", "git not found"))
	assert.True(t, log.has("ERROR", "systemd-run not found"))
	assert.True(t, log.has("ERROR", "player not found"))
}

func TestCheckMemory_CapAboveRAM(t *testing.T) {
	total, ok := physicalMemory()
	if !ok {
		t.Skip("physical memory unknown on this platform")
	}
	cfg := config.DefaultConfig()
	cfg.Sandbox.MemoryMax = fmt.Sprint(total + 1)

	log := &recordLogger{}
	checkMemory(&cfg, log)
	assert.True(t, log.has("WARN", "exceeds physical memory"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "git version 2.43.0", firstLine("git version 2.43.0\n"))
	assert.Equal(t, "systemd 255 (255.4)", firstLine("  systemd 255 (255.4)\n+PAM +AUDIT\n"))
}

type recordLogger struct {
	lines []string
}

func (l *recordLogger) add(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) Info(f string, a ...interface{})    { l.add("INFO", f, a...) }
func (l *recordLogger) Success(f string, a ...interface{}) { l.add("SUCCESS", f, a...) }
func (l *recordLogger) Warn(f string, a ...interface{})    { l.add("WARN", f, a...) }
func (l *recordLogger) Error(f string, a ...interface{})   { l.add("ERROR", f, a...) }
func (l *recordLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		l.add("DEBUG", f, a...)
	}
}

func (l *recordLogger) has(level, substr string) bool {
	for _, line := range l.lines {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
