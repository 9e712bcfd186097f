// Package audiophase implements the Audio Phase: per-line speech
// synthesis (optionally layered), sound-effect mixing, duration
// measurement, and face-animation timeline computation. It is the first
// phase the orchestrator runs and its sequential nature (one external TTS
// call at a time) is deliberate — the TTS service itself serializes.
package audiophase

import (
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/faceanim"
)

// FaceAnimMeta records the parameters a face-animation timeline was
// computed with, so a cached timeline can be invalidated if thresholds or
// fps change between runs.
type FaceAnimMeta struct {
	FPS              int
	ThrHalf, ThrOpen float64
	BlinkMinInterval float64
	BlinkMaxInterval float64
	BlinkCloseFrames int
}

// FaceAnim is the face-animation timeline for one talk line's target
// character.
type FaceAnim struct {
	TargetName string
	Mouth      []faceanim.MouthSeg
	Eyes       []faceanim.BlinkSeg
	Meta       FaceAnimMeta
}

// LineData is the Audio Phase's output for one line (spec data model).
type LineData struct {
	Type         config.LineKind
	AudioPath    string
	Duration     float64
	PreDuration  float64
	PostDuration float64
	Text         string
	TTSText      string
	LineConfig   config.Line
	FaceAnim     *FaceAnim
}

// VoicevoxUsage records one synthesized (speaker, text) pair for the
// voice-usage report.
type VoicevoxUsage struct {
	SpeakerID int
	Text      string
}

// TimelineSink receives append-only timeline entries as lines are
// processed. The orchestrator's internal/timeline.Timeline implements
// this; it is expressed as an interface here so this package does not
// need to import the report-formatting package.
type TimelineSink interface {
	Append(startTime, duration float64, description, text string)
}

// Logger is the subset of internal/logging.Logger this package needs.
type Logger interface {
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}
