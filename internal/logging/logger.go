// Package logging provides the leveled, optionally colored logger used by
// every subcommand. It keeps a printf-style API on top of zerolog console
// writers: errors go to stderr, everything else to stdout, and an optional
// log file receives every line without colors.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/playerops/internal/config"
	"github.com/backmassage/playerops/internal/term"
)

// levelSuccess is written into the level field of Success events; zerolog
// has no such level, so they are emitted with Log() and routed like Info.
const levelSuccess = "success"

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu   sync.Mutex
	zl   zerolog.Logger
	file *os.File // nil for child loggers; only the root owns the file.
}

// NewLogger configures terminal colors from cfg and optionally opens the
// log file. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.General.Color)
	return New(os.Stdout, os.Stderr, cfg.General.LogFile)
}

// New builds a Logger writing to the given streams. logFile may be empty.
func New(stdout, stderr io.Writer, logFile string) (*Logger, error) {
	l := &Logger{}
	color := term.Enabled()

	writers := []io.Writer{
		&levelFilter{out: consoleWriter(stdout, color), errors: false},
		&levelFilter{out: consoleWriter(stderr, color), errors: true},
	}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, consoleWriter(f, false))
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return l, nil
}

// With returns a child logger that adds key=value to every line. The child
// shares the parent's sinks; closing it is a no-op.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Log().Str(zerolog.LevelFieldName, levelSuccess).Msgf(format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

// levelFilter forwards either error-and-above events (errors=true) or
// everything else to out.
type levelFilter struct {
	out    io.Writer
	errors bool
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	isError := level >= zerolog.ErrorLevel && level != zerolog.NoLevel
	if isError != f.errors {
		return len(p), nil
	}
	return f.out.Write(p)
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: timeFormat,
		FormatLevel: func(i interface{}) string {
			return formatLevel(i, color)
		},
	}
}

// formatLevel renders the bracketed level tag, e.g. "[WARN]".
func formatLevel(i interface{}, color bool) string {
	name, _ := i.(string)
	label, c := "INFO", term.Blue
	switch name {
	case zerolog.LevelDebugValue:
		label, c = "DEBUG", term.Cyan
	case zerolog.LevelWarnValue:
		label, c = "WARN", term.Yellow
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		label, c = "ERROR", term.Red
	case levelSuccess:
		label, c = "SUCCESS", term.Green
	}
	if !color || c == "" {
		return "[" + label + "]"
	}
	return c + "[" + label + "]" + term.NC
}
