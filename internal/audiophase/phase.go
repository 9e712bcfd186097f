package audiophase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/faceanim"
	"github.com/scenecast/scenecast/internal/mediaprobe"
	"github.com/scenecast/scenecast/internal/textmarkup"
	"github.com/scenecast/scenecast/internal/ttsclient"
)

type synthesizeFunc func(ctx context.Context, text string, speaker int, speed, pitch float64) ([]byte, error)
type mixFunc func(ctx context.Context, ffmpegBin string, tracks []track, outPath string) error
type measureDurationFunc func(ctx context.Context, path string) (float64, error)

// Phase runs the Audio Phase for one screenplay: speech synthesis, sound
// effect mixing, duration measurement, and face-animation computation.
type Phase struct {
	cache     *cache.Manager
	probe     *mediaprobe.Cache
	log       Logger
	ffmpegBin string
	ttsURL    string
	audio     config.AudioParams
	defaults  config.DefaultsConfig
	faceCache *faceAnimCache

	synthesize      synthesizeFunc
	mix             mixFunc
	measureDuration measureDurationFunc
}

// New builds a Phase. ffmpegBin names the transcoder binary used only for
// the amix-equivalent sound-effect/voice-layer mixing step (the rest of
// this package never shells out to the transcoder).
func New(tts *ttsclient.Client, cacheMgr *cache.Manager, probeCache *mediaprobe.Cache, log Logger, ffmpegBin, ttsURL string, audio config.AudioParams, defaults config.DefaultsConfig) *Phase {
	if log == nil {
		log = nopLogger{}
	}
	p := &Phase{
		cache:     cacheMgr,
		probe:     probeCache,
		log:       log,
		ffmpegBin: ffmpegBin,
		ttsURL:    ttsURL,
		audio:     audio,
		defaults:  defaults,
		faceCache: newFaceAnimCache(256),
	}
	p.synthesize = tts.Synthesize
	p.mix = runMix
	p.measureDuration = p.probeDuration
	return p
}

func (p *Phase) probeDuration(ctx context.Context, path string) (float64, error) {
	info, err := p.probe.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Format.Duration, nil
}

// ProcessScene runs every line of scene in order, sequentially (spec.md
// §5: the external TTS service serializes, so there is nothing to gain
// from concurrency here). currentTime is the scene-relative offset the
// first line starts at (normally 0; callers stitching reports across
// scenes may pass the running total instead).
func (p *Phase) ProcessScene(ctx context.Context, scene *config.Scene, currentTime float64, sink TimelineSink) (map[string]*LineData, []VoicevoxUsage, error) {
	lineData := make(map[string]*LineData, len(scene.Lines))
	var usage []VoicevoxUsage
	t := currentTime

	for i := range scene.Lines {
		line := &scene.Lines[i]
		lineID := fmt.Sprintf("%s_%d", scene.ID, i+1)

		ld, used, err := p.ProcessLine(ctx, lineID, line)
		if err != nil {
			return nil, nil, &errs.PipelineError{Phase: "audio", Err: fmt.Errorf("line %s: %w", lineID, err)}
		}
		lineData[lineID] = ld
		usage = append(usage, used...)

		desc := "wait"
		text := ""
		if ld.Type == config.LineTalk {
			desc = "talk"
			text = ld.Text
		}
		if sink != nil {
			sink.Append(t, ld.Duration, desc, text)
		}
		t += ld.Duration
	}
	return lineData, usage, nil
}

// ProcessLine runs the Audio Phase for a single line.
func (p *Phase) ProcessLine(ctx context.Context, lineID string, line *config.Line) (*LineData, []VoicevoxUsage, error) {
	if line.Kind == config.LineWait {
		return &LineData{Type: config.LineWait, Duration: line.Duration, LineConfig: *line}, nil, nil
	}

	display, ttsText := p.parseReading(line)

	audioPath, usage, err := p.synthesizeLine(ctx, lineID, line, ttsText)
	if err != nil {
		return nil, nil, err
	}

	duration, err := p.lineDuration(ctx, line, audioPath)
	if err != nil {
		return nil, nil, err
	}

	ld := &LineData{
		Type:       config.LineTalk,
		AudioPath:  audioPath,
		Duration:   duration,
		Text:       display,
		TTSText:    ttsText,
		LineConfig: *line,
	}

	if fa, err := p.computeFaceAnim(ctx, lineID, line, audioPath); err != nil {
		p.log.Warn("audiophase: face animation for %s: %v", lineID, err)
	} else {
		ld.FaceAnim = fa
	}

	return ld, usage, nil
}

// parseReading splits a talk line's text into (display_text, tts_text).
// Reading carries the raw ruby-annotated form when present (original
// screenplay convention); a line with no Reading uses Text verbatim for
// both (the identity case, spec.md §8's round-trip property).
func (p *Phase) parseReading(line *config.Line) (display, tts string) {
	if line.Reading != "" {
		return textmarkup.Parse(line.Reading, textmarkup.ModeRuby)
	}
	return line.Text, line.Text
}

// synthesizeLine synthesizes (and caches) every voice layer plus sound
// effect for line, then mixes them into a single track if there is more
// than one.
func (p *Phase) synthesizeLine(ctx context.Context, lineID string, line *config.Line, ttsText string) (string, []VoicevoxUsage, error) {
	layers := line.VoiceLayers
	if len(layers) == 0 {
		speaker := 0
		if line.SpeakerID != nil {
			speaker = *line.SpeakerID
		}
		layers = []config.VoiceLayer{{
			SpeakerID: speaker,
			Text:      ttsText,
			Speed:     line.Speed,
			Pitch:     line.Pitch,
			Volume:    1.0,
		}}
	}

	var tracks []track
	var usage []VoicevoxUsage
	for i, layer := range layers {
		path, err := p.synthesizeLayer(ctx, lineID, i, layer)
		if err != nil {
			return "", nil, err
		}
		vol := layer.Volume
		if vol == 0 {
			vol = 1.0
		}
		tracks = append(tracks, track{Path: path, Volume: vol, DelayMs: layer.DelayMs})
		usage = append(usage, VoicevoxUsage{SpeakerID: layer.SpeakerID, Text: layer.Text})
	}

	for _, se := range line.SoundEffects {
		vol := se.Volume
		if vol == 0 {
			vol = 1.0
		}
		tracks = append(tracks, track{Path: se.Path, Volume: vol, DelayMs: se.DelayMs, Loop: se.Loop})
	}

	if len(tracks) == 1 {
		return tracks[0].Path, usage, nil
	}

	mixKey := cache.Key{"kind": "mix", "line_id": lineID, "tracks": tracks}
	mixPath, err := p.cache.GetOrCreate(mixKey, "mix_"+sanitize(lineID), "wav", func(out string) (string, error) {
		if err := p.mix(ctx, p.ffmpegBin, tracks, out); err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		return "", nil, &errs.PipelineError{Phase: "audio", Err: fmt.Errorf("mix line %s: %w", lineID, err)}
	}
	return mixPath, usage, nil
}

// synthesizeLayer calls the TTS engine (through the artifact cache) for
// one voice layer, keyed by every parameter that affects the output WAV.
func (p *Phase) synthesizeLayer(ctx context.Context, lineID string, index int, layer config.VoiceLayer) (string, error) {
	key := cache.Key{
		"tts_text":     layer.Text,
		"speaker":      layer.SpeakerID,
		"speed":        layer.Speed,
		"pitch":        layer.Pitch,
		"tts_url":      p.ttsURL,
		"audio_params": p.audio,
	}
	name := fmt.Sprintf("speech_%s_%d", sanitize(lineID), index)
	path, err := p.cache.GetOrCreate(key, name, "wav", func(out string) (string, error) {
		wav, err := p.synthesize(ctx, layer.Text, layer.SpeakerID, layer.Speed, layer.Pitch)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, wav, 0o644); err != nil {
			return "", fmt.Errorf("write synthesized speech: %w", err)
		}
		return out, nil
	})
	if err != nil {
		return "", &errs.PipelineError{Phase: "audio", Err: fmt.Errorf("synthesize %s layer %d: %w", lineID, index, err)}
	}
	return path, nil
}

// lineDuration measures the rendered clip's duration: the insert media's
// duration if it's a video with its own timeline, else the synthesized
// speech track's duration.
func (p *Phase) lineDuration(ctx context.Context, line *config.Line, audioPath string) (float64, error) {
	if line.Insert != nil && isVideoPath(line.Insert.Path) {
		d, err := p.measureDuration(ctx, line.Insert.Path)
		if err != nil {
			return 0, &errs.PipelineError{Phase: "audio", Err: fmt.Errorf("probe insert %s: %w", line.Insert.Path, err)}
		}
		return d, nil
	}
	d, err := p.measureDuration(ctx, audioPath)
	if err != nil {
		return 0, &errs.PipelineError{Phase: "audio", Err: fmt.Errorf("probe speech %s: %w", audioPath, err)}
	}
	return d, nil
}

// computeFaceAnim builds the mouth/blink timeline for the line's visible
// target character, or returns nil if the line has none.
func (p *Phase) computeFaceAnim(ctx context.Context, lineID string, line *config.Line, audioPath string) (*FaceAnim, error) {
	target := firstVisibleCharacter(line.Characters)
	if target == nil {
		return nil, nil
	}

	fps := p.defaults.FaceAnimFPS
	thrHalf := p.defaults.MouthHalfRatio
	thrOpen := p.defaults.MouthOpenRatio

	mouth, err := p.mouthTimeline(audioPath, fps, thrHalf, thrOpen)
	if err != nil {
		return nil, err
	}
	var duration float64
	if len(mouth) > 0 {
		duration = mouth[len(mouth)-1].End
	}
	eyes := faceanim.GenerateBlinkTimeline(lineID, duration, fps,
		p.defaults.BlinkMinInterval, p.defaults.BlinkMaxInterval, p.defaults.BlinkCloseFrames)

	return &FaceAnim{
		TargetName: target.Name,
		Mouth:      mouth,
		Eyes:       eyes,
		Meta: FaceAnimMeta{
			FPS: fps, ThrHalf: thrHalf, ThrOpen: thrOpen,
			BlinkMinInterval: p.defaults.BlinkMinInterval,
			BlinkMaxInterval: p.defaults.BlinkMaxInterval,
			BlinkCloseFrames: p.defaults.BlinkCloseFrames,
		},
	}, nil
}

func (p *Phase) mouthTimeline(audioPath string, fps int, thrHalf, thrOpen float64) ([]faceanim.MouthSeg, error) {
	fi, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat speech audio: %w", err)
	}
	key := faceAnimKey{
		path: audioPath, mtime: fi.ModTime().UnixNano(), size: fi.Size(),
		fps: fps, thrHalf: thrHalf, thrOpen: thrOpen,
	}
	if cached, ok := p.faceCache.get(key); ok {
		return cached, nil
	}
	segs, err := faceanim.ComputeMouthTimeline(audioPath, fps, thrHalf, thrOpen)
	if err != nil {
		return nil, fmt.Errorf("compute mouth timeline: %w", err)
	}
	p.faceCache.put(key, segs)
	return segs, nil
}

func firstVisibleCharacter(chars []config.CharacterOverlay) *config.CharacterOverlay {
	for i := range chars {
		if chars[i].Visible {
			return &chars[i]
		}
	}
	return nil
}

func isVideoPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".webm", ".avi":
		return true
	default:
		return false
	}
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(s)
}
