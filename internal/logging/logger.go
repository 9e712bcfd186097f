// Package logging provides a leveled logger with optional file sink and
// JSON output, built on logrus. ANSI colors are managed by [term.Configure];
// the logger's text formatter reads them from the [term] package at format
// time.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/term"
)

// Logger writes leveled messages to stdout/stderr (via logrus) and
// optionally appends a plain-text copy to a log file. The file copy never
// carries ANSI color or JSON structure — it exists for post-hoc grepping.
type Logger struct {
	mu      sync.Mutex
	stdout  *logrus.Logger
	stderr  *logrus.Logger
	file    *os.File
	verbose bool
}

// NewLogger initializes terminal colors via [term.Configure] and opens a
// log file if cfg.LogFile is set. The caller must call [Logger.Close] when
// finished.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	formatter := newFormatter(cfg.LogJSON)

	l := &Logger{verbose: cfg.Verbose}
	l.stdout = logrus.New()
	l.stdout.SetOutput(os.Stdout)
	l.stdout.SetFormatter(formatter)
	l.stdout.SetLevel(logrus.TraceLevel)

	l.stderr = logrus.New()
	l.stderr.SetOutput(os.Stderr)
	l.stderr.SetFormatter(formatter)
	l.stderr.SetLevel(logrus.TraceLevel)

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Close flushes and closes the log file, if one was opened.
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

// line emits a single entry tagged with kind (the display label; also
// drives the text formatter's color choice) at the given logrus level, and
// appends a plain copy to the log file if one is open.
func (l *Logger) line(dest *logrus.Logger, level logrus.Level, kind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	dest.WithField("kind", kind).Log(level, msg)

	if l.file != nil {
		ts := time.Now().Format("2006-01-02 15:04:05")
		fmt.Fprintf(l.file, "%s [%s] %s\n", ts, kind, msg)
	}
}

// Info logs an informational message (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(l.stdout, logrus.InfoLevel, "INFO", format, args...)
}

// Success logs a success message (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(l.stdout, logrus.InfoLevel, "SUCCESS", format, args...)
}

// Warn logs a warning (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(l.stdout, logrus.WarnLevel, "WARN", format, args...)
}

// Error logs an error (red) to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(l.stderr, logrus.ErrorLevel, "ERROR", format, args...)
}

// Render logs a render-plan message (magenta): which clips will be
// scene-based, run-based, or individually rendered.
func (l *Logger) Render(format string, args ...interface{}) {
	l.line(l.stdout, logrus.InfoLevel, "RENDER", format, args...)
}

// Outlier logs an auto-tune or capability-probe outlier (orange): a clip
// that fell back to CPU filters, or a probe result far from expectation.
func (l *Logger) Outlier(format string, args ...interface{}) {
	l.line(l.stdout, logrus.WarnLevel, "OUTLIER", format, args...)
}

// Debug logs a debug message (cyan) only when the logger was configured
// with Verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(l.stdout, logrus.DebugLevel, "DEBUG", format, args...)
}
