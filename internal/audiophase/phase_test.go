package audiophase

import (
	"context"
	"testing"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/mediaprobe"
)

func newTestPhase(t *testing.T) *Phase {
	t.Helper()
	mgr, err := cache.New(t.TempDir(), 168, 10240, false, false)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	probeCache, err := mediaprobe.NewCache(64)
	if err != nil {
		t.Fatalf("mediaprobe.NewCache: %v", err)
	}
	p := &Phase{
		cache:     mgr,
		probe:     probeCache,
		log:       nopLogger{},
		ffmpegBin: "ffmpeg",
		ttsURL:    "http://127.0.0.1:50021",
		audio:     config.AudioParams{SampleRate: 48000, Channels: 2, Codec: "aac"},
		defaults: config.DefaultsConfig{
			FaceAnimFPS: 30, MouthHalfRatio: 0.2, MouthOpenRatio: 0.6,
			BlinkMinInterval: 2, BlinkMaxInterval: 5, BlinkCloseFrames: 2,
		},
		faceCache: newFaceAnimCache(64),
	}
	p.synthesize = func(ctx context.Context, text string, speaker int, speed, pitch float64) ([]byte, error) {
		return fakeWAV(0.2), nil
	}
	p.mix = func(ctx context.Context, ffmpegBin string, tracks []track, out string) error {
		return writeWAVFile(out, fakeWAV(0.2))
	}
	p.measureDuration = func(ctx context.Context, path string) (float64, error) {
		return readWAVDuration(t, path), nil
	}
	return p
}

func TestProcessLineWaitRecordsDurationOnly(t *testing.T) {
	p := newTestPhase(t)
	line := &config.Line{Kind: config.LineWait, Duration: 1.5}
	ld, usage, err := p.ProcessLine(context.Background(), "scene1_1", line)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if ld.Type != config.LineWait || ld.Duration != 1.5 || ld.AudioPath != "" {
		t.Errorf("unexpected wait LineData: %+v", ld)
	}
	if len(usage) != 0 {
		t.Errorf("wait line should produce no voicevox usage, got %v", usage)
	}
}

func TestProcessLineTalkSynthesizesAndMeasuresDuration(t *testing.T) {
	p := newTestPhase(t)
	speaker := 3
	line := &config.Line{
		Kind: config.LineTalk, Text: "hello there", SpeakerID: &speaker, Speed: 1.0,
	}
	ld, usage, err := p.ProcessLine(context.Background(), "scene1_2", line)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if ld.AudioPath == "" {
		t.Fatal("expected a non-empty audio path")
	}
	if ld.Duration <= 0 {
		t.Errorf("expected positive duration, got %v", ld.Duration)
	}
	if ld.Text != "hello there" || ld.TTSText != "hello there" {
		t.Errorf("unexpected text split: display=%q tts=%q", ld.Text, ld.TTSText)
	}
	if len(usage) != 1 || usage[0].SpeakerID != 3 {
		t.Errorf("unexpected usage: %v", usage)
	}
}

func TestProcessLineCachesRepeatSynthesis(t *testing.T) {
	p := newTestPhase(t)
	calls := 0
	p.synthesize = func(ctx context.Context, text string, speaker int, speed, pitch float64) ([]byte, error) {
		calls++
		return fakeWAV(0.3), nil
	}
	line := &config.Line{Kind: config.LineTalk, Text: "same text every time"}

	ld1, _, err := p.ProcessLine(context.Background(), "scene1_1", line)
	if err != nil {
		t.Fatalf("first ProcessLine: %v", err)
	}
	ld2, _, err := p.ProcessLine(context.Background(), "scene1_1", line)
	if err != nil {
		t.Fatalf("second ProcessLine: %v", err)
	}
	if ld1.AudioPath != ld2.AudioPath {
		t.Errorf("expected identical cached path, got %q vs %q", ld1.AudioPath, ld2.AudioPath)
	}
	if calls != 1 {
		t.Errorf("expected synthesize to run once (cache hit second time), got %d calls", calls)
	}
}

func TestProcessLineReadingMarkupSplitsDisplayAndTTS(t *testing.T) {
	p := newTestPhase(t)
	line := &config.Line{Kind: config.LineTalk, Text: "placeholder", Reading: "今日(きょう)はいい天気です"}
	ld, _, err := p.ProcessLine(context.Background(), "scene2_1", line)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if ld.Text != "今日はいい天気です" {
		t.Errorf("display text = %q", ld.Text)
	}
	if ld.TTSText != "きょうはいい天気です" {
		t.Errorf("tts text = %q", ld.TTSText)
	}
}

func TestProcessLineWithVoiceLayersAndSoundEffectsMixes(t *testing.T) {
	p := newTestPhase(t)
	mixed := false
	p.mix = func(ctx context.Context, ffmpegBin string, tracks []track, out string) error {
		mixed = true
		if len(tracks) != 3 {
			t.Errorf("expected 3 tracks (2 layers + 1 sfx), got %d", len(tracks))
		}
		return writeWAVFile(out, fakeWAV(0.4))
	}
	line := &config.Line{
		Kind: config.LineTalk,
		Text: "layered",
		VoiceLayers: []config.VoiceLayer{
			{SpeakerID: 1, Text: "layer one", Volume: 1.0},
			{SpeakerID: 2, Text: "layer two", Volume: 0.5, DelayMs: 100},
		},
		SoundEffects: []config.SoundEffect{
			{Path: "sfx.wav", Volume: 0.8},
		},
	}
	ld, usage, err := p.ProcessLine(context.Background(), "scene3_1", line)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if !mixed {
		t.Error("expected mix to be called for multi-track line")
	}
	if len(usage) != 2 {
		t.Errorf("expected 2 voicevox usage entries (one per layer), got %d", len(usage))
	}
	if ld.AudioPath == "" {
		t.Error("expected a mixed audio path")
	}
}

func TestProcessLineFaceAnimOnlyWhenVisibleCharacterPresent(t *testing.T) {
	p := newTestPhase(t)
	withChar := &config.Line{
		Kind: config.LineTalk, Text: "hi",
		Characters: []config.CharacterOverlay{{Name: "yuki", Visible: true}},
	}
	ld, _, err := p.ProcessLine(context.Background(), "scene4_1", withChar)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if ld.FaceAnim == nil || ld.FaceAnim.TargetName != "yuki" {
		t.Errorf("expected face anim for visible character, got %+v", ld.FaceAnim)
	}

	noChar := &config.Line{Kind: config.LineTalk, Text: "hi"}
	ld2, _, err := p.ProcessLine(context.Background(), "scene4_2", noChar)
	if err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if ld2.FaceAnim != nil {
		t.Errorf("expected no face anim without a visible character, got %+v", ld2.FaceAnim)
	}
}

func TestProcessSceneAccumulatesTimelineOffsets(t *testing.T) {
	p := newTestPhase(t)
	scene := &config.Scene{
		ID: "scene5",
		Lines: []config.Line{
			{Kind: config.LineWait, Duration: 1.0},
			{Kind: config.LineTalk, Text: "hello"},
		},
	}
	sink := &fakeSink{}
	lineData, _, err := p.ProcessScene(context.Background(), scene, 0, sink)
	if err != nil {
		t.Fatalf("ProcessScene: %v", err)
	}
	if len(lineData) != 2 {
		t.Fatalf("expected 2 line entries, got %d", len(lineData))
	}
	if len(sink.starts) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(sink.starts))
	}
	if sink.starts[0] != 0 {
		t.Errorf("first entry should start at 0, got %v", sink.starts[0])
	}
	if sink.starts[1] != 1.0 {
		t.Errorf("second entry should start after the wait's duration, got %v", sink.starts[1])
	}
}

type fakeSink struct {
	starts []float64
}

func (f *fakeSink) Append(startTime, duration float64, description, text string) {
	f.starts = append(f.starts, startTime)
}
