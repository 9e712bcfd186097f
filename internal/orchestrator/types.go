// Package orchestrator wires every phase together for one screenplay run:
// the Audio Phase (internal/audiophase), the
// Scene Planner + Video Phase (internal/videophase), the Finalize Phase
// (internal/finalize), startup dependency checks (internal/check), and
// report emission (internal/timeline plus this package's voice-usage
// report).
package orchestrator

import (
	"github.com/google/uuid"

	"github.com/scenecast/scenecast/internal/audiophase"
)

// Logger is the subset of internal/logging.Logger the orchestrator needs.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Success(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})    {}
func (nopLogger) Error(string, ...interface{})   {}

// Result summarizes one completed run.
type Result struct {
	OutputPath    string
	Duration      float64
	ScenesMuxed   int
	TimelinePaths []string
	SubtitlePaths []string
	VoiceReport   string
	VoiceUsage    []audiophase.VoicevoxUsage
}

// newRunID returns a filesystem-safe identifier for one run, used as the
// owner of that run's report paths in timeline.PathResolver. The
// orchestrator creates no temp directory of its own.
func newRunID() string {
	return uuid.NewString()
}
