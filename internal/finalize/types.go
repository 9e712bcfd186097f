// Package finalize implements the Finalize Phase (C9): concatenate the
// ordered scene MP4s produced by internal/videophase into one output file,
// stream-copying when every scene shares the same encode parameters and
// falling back to a re-encode otherwise, then optionally mix in a global
// background-music track.
package finalize

import (
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/mediaprobe"
)

// Logger is the subset of internal/logging.Logger this package needs.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}

// SceneClip is one scene's rendered output, as produced by
// internal/videophase.SceneResult — redeclared locally rather than
// importing that package, so finalize stays usable against any phase that
// can produce an ordered list of scene MP4 paths.
type SceneClip struct {
	SceneID  string
	Path     string
	Duration float64
}

// Finalizer holds everything the Finalize Phase needs.
type Finalizer struct {
	FFmpegBin     string
	Probe         *mediaprobe.Cache
	Video         config.VideoParams
	Audio         config.AudioParams
	FinalCopyOnly bool
	Log           Logger
}

// NewFinalizer returns a Finalizer ready to process one run's scene clips.
func NewFinalizer(ffmpegBin string, probe *mediaprobe.Cache, video config.VideoParams, audio config.AudioParams, finalCopyOnly bool, log Logger) *Finalizer {
	if log == nil {
		log = nopLogger{}
	}
	return &Finalizer{FFmpegBin: ffmpegBin, Probe: probe, Video: video, Audio: audio, FinalCopyOnly: finalCopyOnly, Log: log}
}
