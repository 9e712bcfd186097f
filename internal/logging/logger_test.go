package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/scenecast/scenecast/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
	l.Warn("test warning")
	l.Error("test error")
	l.Debug("hidden unless verbose")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "scenecast.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Success("render complete")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("INFO")) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte("SUCCESS")) {
		t.Errorf("log file missing SUCCESS entry: %s", string(b))
	}
}

func TestDebugRespectsVerbose(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "scenecast.log")
	cfg.Verbose = false

	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("should not appear")
	l.Close()

	b, _ := os.ReadFile(cfg.LogFile)
	if bytes.Contains(b, []byte("should not appear")) {
		t.Errorf("Debug wrote output despite Verbose=false: %s", string(b))
	}
}
