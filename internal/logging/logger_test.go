package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/playerops/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.Color = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.General.Color = config.ColorNever
	cfg.General.LogFile = filepath.Join(dir, "logs", "playerops.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Success("done")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.General.LogFile)
	if !bytes.Contains(b, []byte("[INFO]")) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte("[SUCCESS]")) {
		t.Errorf("success line missing from log file: %s", string(b))
	}
}

func TestLogger_RoutesErrorsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, err := New(&stdout, &stderr, "")
	if err != nil {
		t.Fatal(err)
	}

	l.Info("info line")
	l.Warn("warn line")
	l.Success("success line")
	l.Error("error line")

	out, errOut := stdout.String(), stderr.String()
	for _, want := range []string{"[INFO] info line", "[WARN] warn line", "[SUCCESS] success line"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "error line") {
		t.Errorf("error line leaked to stdout:\n%s", out)
	}
	if !strings.Contains(errOut, "[ERROR] error line") {
		t.Errorf("stderr missing error line:\n%s", errOut)
	}
	if strings.Contains(errOut, "info line") {
		t.Errorf("info line leaked to stderr:\n%s", errOut)
	}
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	var stdout bytes.Buffer
	l, err := New(&stdout, &bytes.Buffer{}, "")
	if err != nil {
		t.Fatal(err)
	}

	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("Debug(false) should not write")
	}
	if !strings.Contains(stdout.String(), "[DEBUG] shown") {
		t.Errorf("Debug(true) output missing:\n%s", stdout.String())
	}
}

func TestLogger_WithAddsField(t *testing.T) {
	var stdout bytes.Buffer
	l, err := New(&stdout, &bytes.Buffer{}, "")
	if err != nil {
		t.Fatal(err)
	}

	child := l.With("run", "abc123")
	child.Info("working")
	if err := child.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "run=abc123") {
		t.Errorf("child field missing:\n%s", stdout.String())
	}
}
