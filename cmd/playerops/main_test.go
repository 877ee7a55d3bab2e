package main

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"playerops", "--no-color"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playerops.toml")

	code, out, _ := runCLI(t, "config", "init", "-o", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Created configuration file at "+path)

	code, out, _ = runCLI(t, "--config", path, "config", "validate")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Configuration is valid")

	code, _, _ = runCLI(t, "config", "init", "-o", path)
	assert.Equal(t, 1, code, "existing file without --force")
}

func TestVerboseAndVersionFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playerops.toml")
	code, _, _ := runCLI(t, "config", "init", "-o", path)
	require.Equal(t, 0, code)

	code, out, errOut := runCLI(t, "-v", "--config", path, "config", "validate")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Configuration is valid")

	for _, flag := range []string{"--version", "-V"} {
		code, out, _ = runCLI(t, flag)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, version, flag)
	}
}

func TestSubcommandsAcceptVerbose(t *testing.T) {
	dir := t.TempDir()
	code, _, errOut := runCLI(t, "--verbose", "dedup", "--input", dir, "--dry-run")
	assert.Equal(t, 0, code, errOut)
}

func TestMissingConfigFile(t *testing.T) {
	code, _, errOut := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "dedup")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(errOut, "playerops: "), errOut)
}

func TestSizeGuard_ExitCodes(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := t.TempDir()
	gitCmd(t, repo, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "small.txt"), []byte("ok"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "limit.bin"), make([]byte, 131072), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "big.bin"), make([]byte, 131073), 0o644))
	gitCmd(t, repo, "add", ".")

	code, out, _ := runCLI(t, "sizeguard", "--root", repo)
	assert.Equal(t, exitViolation, code)
	assert.Equal(t, "big.bin (131073 bytes) is over the maximum size of 131072 bytes.\n", out)

	code, out, _ = runCLI(t, "sizeguard", "--root", repo, "--max-size", "200000")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)

	notRepo := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(notRepo))
	code, _, errOut := runCLI(t, "sizeguard", "--root", notRepo)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "playerops: ")
}

func TestDedupCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("same"), 0o644))

	code, _, _ := runCLI(t, "dedup", "--input", dir)
	require.Equal(t, 0, code)

	sum := sha512.Sum512([]byte("same"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hex.EncodeToString(sum[:])+".txt", entries[0].Name())
}

func TestRunCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	input, output := filepath.Join(root, "input"), filepath.Join(root, "output")
	require.NoError(t, os.Mkdir(input, 0o755))
	for _, name := range []string{"one", "two", "fail"} {
		require.NoError(t, os.WriteFile(filepath.Join(input, name), []byte(name), 0o644))
	}
	player := filepath.Join(root, "player")
	script := "#!/bin/sh\ncat \"$1\"\ncase \"$1\" in *fail) exit 4;; esac\n"
	require.NoError(t, os.WriteFile(player, []byte(script), 0o755))

	code, _, _ := runCLI(t, "run", "--player", player, "--input", input, "--output", output)
	assert.Equal(t, 0, code, "non-zero player exits are tolerated by default")
	for _, name := range []string{"one", "two", "fail"} {
		b, err := os.ReadFile(filepath.Join(output, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(b))
	}

	code, _, errOut := runCLI(t, "run", "--player", player, "--input", input, "--output", output, "--strict")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "strict mode")
}

func TestRunCommand_MissingPlayer(t *testing.T) {
	root := t.TempDir()
	code, _, errOut := runCLI(t, "run", "--player", filepath.Join(root, "player"), "--input", root, "--output", filepath.Join(root, "out"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "player not found")
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}
