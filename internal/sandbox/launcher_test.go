package sandbox

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestScopeArgs(t *testing.T) {
	inv := Invocation{Program: "./player", Args: []string{"--input", "a.png", "--debugging-path", "debugging/a"}}
	tests := []struct {
		name  string
		scope Scope
		want  []string
	}{
		{
			name:  "user scope",
			scope: Scope{MemoryMax: 16 << 30, User: true},
			want: []string{"--user", "--scope", "-p", "MemoryMax=17179869184", "--quiet", "--",
				"./player", "--input", "a.png", "--debugging-path", "debugging/a"},
		},
		{
			name:  "system scope",
			scope: Scope{MemoryMax: 512 << 20},
			want: []string{"--scope", "-p", "MemoryMax=536870912", "--quiet", "--",
				"./player", "--input", "a.png", "--debugging-path", "debugging/a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.scope.Args(inv)); diff != "" {
				t.Errorf("Args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDirect_CapturesStdout(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	res, err := Direct{}.Launch(context.Background(), Invocation{
		Program: "sh",
		Args:    []string{"-c", "printf 'played %s' \"$1\"", "sh", "input-a"},
		Stdout:  &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "played input-a", out.String())
}

func TestDirect_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)
	var stderr bytes.Buffer
	res, err := Direct{}.Launch(context.Background(), Invocation{
		Program: "sh",
		Args:    []string{"-c", "echo partial; echo broken >&2; exit 3"},
		Stdout:  &bytes.Buffer{},
		Stderr:  &stderr,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken\n", stderr.String())
}

func TestDirect_MissingProgram(t *testing.T) {
	_, err := Direct{}.Launch(context.Background(), Invocation{
		Program: filepath.Join(t.TempDir(), "no-such-player"),
	})
	assert.Error(t, err)
}

func TestDirect_CancelledContext(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Direct{}.Launch(ctx, Invocation{Program: "sh", Args: []string{"-c", "sleep 5"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScope_UsesBinaryOverride(t *testing.T) {
	requireShell(t)
	// A stand-in for systemd-run that echoes its arguments.
	fake := filepath.Join(t.TempDir(), "systemd-run")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\necho \"$@\"\n"), 0o755))

	var out bytes.Buffer
	s := Scope{MemoryMax: 1024, User: true, Binary: fake}
	res, err := s.Launch(context.Background(), Invocation{Program: "./player", Args: []string{"in"}, Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "--user --scope -p MemoryMax=1024 --quiet -- ./player in\n", out.String())
}
