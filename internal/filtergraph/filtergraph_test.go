package filtergraph

import (
	"strings"
	"testing"

	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

func TestGraphBuilderBasics(t *testing.T) {
	g := NewGraph()
	i0 := g.AddInput("bg.png")
	i1 := g.AddInput("speech.wav")
	if i0 != 0 || i1 != 1 {
		t.Fatalf("AddInput indices = %d,%d, want 0,1", i0, i1)
	}
	if got := StreamRef(1, "a"); got != "[1:a]" {
		t.Errorf("StreamRef = %q", got)
	}
	if got := Label("bg"); got != "[bg]" {
		t.Errorf("Label = %q", got)
	}
	g.AddChain("[0:v]scale=1920:1080[bg]")
	g.AddChain("")
	g.AddChain("[bg]format=yuv420p[out]")
	want := "[0:v]scale=1920:1080[bg];[bg]format=yuv420p[out]"
	if got := g.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestAnchorOffsetCorners(t *testing.T) {
	cases := []struct {
		anchor config.AnchorMode
		wantX  string
		wantY  string
	}{
		{config.AnchorTopLeft, "0", "0"},
		{config.AnchorTopRight, "W-w", "0"},
		{config.AnchorBottomLeft, "0", "H-h"},
		{config.AnchorBottomRight, "W-w", "H-h"},
		{config.AnchorCenter, "(W-w)/2", "(H-h)/2"},
	}
	for _, c := range cases {
		x, y := anchorOffset(c.anchor, "W", "H", "w", "h", 0, 0)
		if x != c.wantX || y != c.wantY {
			t.Errorf("anchorOffset(%s) = (%s,%s), want (%s,%s)", c.anchor, x, y, c.wantX, c.wantY)
		}
	}
}

func TestAnchorOffsetAppliesPixelOffset(t *testing.T) {
	x, y := anchorOffset(config.AnchorTopLeft, "W", "H", "w", "h", 10, -5)
	if x != "0+10" || y != "0+-5" {
		t.Errorf("anchorOffset with offset = (%s,%s)", x, y)
	}
}

func TestBuildBackgroundFitPreScaled(t *testing.T) {
	layout := config.BackgroundLayout{Fit: config.FitCover}
	if got := BuildBackgroundFit(layout, 1920, 1080, 30, true, false); got != "null" {
		t.Errorf("pre-scaled no-fps = %q, want null", got)
	}
	if got := BuildBackgroundFit(layout, 1920, 1080, 30, true, true); got != "fps=30" {
		t.Errorf("pre-scaled with fps = %q", got)
	}
}

func TestBuildBackgroundFitModes(t *testing.T) {
	for _, fit := range []config.FitMode{config.FitStretch, config.FitContain, config.FitCover, config.FitWidth, config.FitHeight} {
		layout := config.BackgroundLayout{Fit: fit, FillColor: "black"}
		got := BuildBackgroundFit(layout, 1920, 1080, 30, false, true)
		if !strings.Contains(got, "scale=") {
			t.Errorf("fit=%s: expected a scale stage, got %q", fit, got)
		}
		if !strings.HasSuffix(got, "fps=30") {
			t.Errorf("fit=%s: expected trailing fps stage, got %q", fit, got)
		}
	}
}

func TestPiecewiseSlideNoEffectReturnsBase(t *testing.T) {
	if got := piecewiseSlide("100", "", 0, "", 0, 5); got != "100" {
		t.Errorf("piecewiseSlide with no effect = %q, want base", got)
	}
}

func TestPiecewiseSlideEnterOnly(t *testing.T) {
	got := piecewiseSlide("100", "-overlay_w", 0.5, "", 0, 5)
	if !strings.Contains(got, "if(lt(t,0.5)") {
		t.Errorf("expected enter-phase if(), got %q", got)
	}
	if strings.Contains(got, "if(gt(t,") {
		t.Errorf("did not expect a leave-phase clause, got %q", got)
	}
}

func TestPiecewiseSlideBothPhases(t *testing.T) {
	got := piecewiseSlide("100", "-overlay_w", 0.5, "main_w", 0.3, 5)
	if !strings.Contains(got, "if(lt(t,0.5)") || !strings.Contains(got, "if(gt(t,4.7)") {
		t.Errorf("expected both enter and leave clauses, got %q", got)
	}
}

func TestCharOffsetEdges(t *testing.T) {
	cases := map[string][2]string{
		config.EffectSlideLeft:   {"-overlay_w", ""},
		config.EffectSlideRight:  {"main_w", ""},
		config.EffectSlideTop:    {"", "-overlay_h"},
		config.EffectSlideBottom: {"", "main_h"},
		"none":                   {"", ""},
	}
	for effect, want := range cases {
		x, y := charOffsetEdges(effect)
		if x != want[0] || y != want[1] {
			t.Errorf("charOffsetEdges(%q) = (%q,%q), want (%q,%q)", effect, x, y, want[0], want[1])
		}
	}
}

func TestBuildCharacterPositionStaticWhenNoEffects(t *testing.T) {
	co := config.CharacterOverlay{
		Anchor:   config.AnchorBottomCenter,
		Position: config.Point{X: 0, Y: 0},
	}
	x, y, dynamic := buildCharacterPosition(nil, co, 3)
	if dynamic {
		t.Error("expected dynamic=false for a character with no enter/leave/effects")
	}
	if !strings.Contains(x, "main_w") || !strings.Contains(y, "main_h") {
		t.Errorf("expected anchor expression referencing main_w/main_h, got (%s,%s)", x, y)
	}
}

func TestBuildCharacterPositionDynamicWithSlide(t *testing.T) {
	co := config.CharacterOverlay{
		Anchor:        config.AnchorBottomCenter,
		EnterEffect:   config.EffectSlideLeft,
		EnterDuration: 0.4,
	}
	_, _, dynamic := buildCharacterPosition(nil, co, 3)
	if !dynamic {
		t.Error("expected dynamic=true when a slide enter effect is set")
	}
}

func TestBuildCharacterPositionFoldsCharEffects(t *testing.T) {
	reg := pluginregistry.New(nil)
	pluginregistry.RegisterBuiltins(reg)
	co := config.CharacterOverlay{
		Anchor:  config.AnchorCenter,
		Effects: []config.Effect{{Type: "char:bob_char"}},
	}
	x, y, dynamic := buildCharacterPosition(reg, co, 3)
	if !dynamic {
		t.Error("expected dynamic=true once a char effect is folded in")
	}
	if !strings.Contains(y, "sin(") {
		t.Errorf("expected a sine term folded into y, got %q", y)
	}
	_ = x
}

func TestSelectPathCPUModeNoAlphaShortCircuits(t *testing.T) {
	prober := capability.New("ffmpeg-does-not-exist", nil)
	prober.SetFilterMode(capability.FilterModeCPU)
	path := SelectPath(prober, ClipOverlayInputs{HasAlphaOverlay: false})
	if path != PathCPU {
		t.Errorf("SelectPath = %v, want PathCPU", path)
	}
}

func TestSelectPathForcesHybridOrCPUWhenAlphaRequiredInCPUMode(t *testing.T) {
	prober := capability.New("ffmpeg-does-not-exist", nil)
	prober.SetFilterMode(capability.FilterModeCPU)
	path := SelectPath(prober, ClipOverlayInputs{HasAlphaOverlay: true})
	if path != PathCPU && path != PathHybrid {
		t.Errorf("SelectPath = %v, want PathCPU or PathHybrid", path)
	}
}

func TestBuildAudioChainNoSpeechNoInsertUsesNullSource(t *testing.T) {
	g := NewGraph()
	a := config.AudioParams{SampleRate: 48000, Channels: 2, Codec: "aac", Bitrate: "192k"}
	label := BuildAudioChain(g, a, false, -1, 0, 2.5, "audio_out")
	if label != "audio_out" {
		t.Fatalf("label = %q", label)
	}
	rendered := g.Render()
	if !strings.Contains(rendered, "anullsrc") {
		t.Errorf("expected anullsrc stage, got %q", rendered)
	}
	if !strings.Contains(rendered, "apad=pad_dur=2.5") {
		t.Errorf("expected apad stage, got %q", rendered)
	}
}

func TestBuildAudioChainMixesInsertAudio(t *testing.T) {
	g := NewGraph()
	a := config.AudioParams{SampleRate: 48000}
	label := BuildAudioChain(g, a, true, 3, 100, 2.0, "audio_out")
	rendered := g.Render()
	if !strings.Contains(rendered, "[1:a][3:a]amix=inputs=2") {
		t.Errorf("expected amix of speech and insert audio, got %q", rendered)
	}
	if !strings.Contains(rendered, "adelay=100:all=1") {
		t.Errorf("expected adelay stage, got %q", rendered)
	}
	_ = label
}

func TestBuildFormatNormalizationAppendsYUV420pByDefault(t *testing.T) {
	g := NewGraph()
	out := BuildFormatNormalization(g, false, false, "bg", "video_out")
	if out != "video_out" {
		t.Fatalf("out = %q", out)
	}
	if !strings.Contains(g.Render(), "format=yuv420p") {
		t.Errorf("expected format=yuv420p stage, got %q", g.Render())
	}
}

func TestBuildFormatNormalizationSkipsDownloadOnFullCUDAPath(t *testing.T) {
	g := NewGraph()
	out := BuildFormatNormalization(g, true, true, "bg", "video_out")
	if out != "video_out" {
		t.Fatalf("out = %q", out)
	}
	if strings.Contains(g.Render(), "yuv420p") {
		t.Errorf("did not expect a yuv420p stage on the full CUDA path, got %q", g.Render())
	}
}

func TestBuildClipCPUOnlyLineWithCharacterProducesValidArgs(t *testing.T) {
	prober := capability.New("ffmpeg-does-not-exist", nil)
	prober.SetFilterMode(capability.FilterModeCPU)
	reg := pluginregistry.New(nil)
	pluginregistry.RegisterBuiltins(reg)

	spec := ClipSpec{
		Background: BackgroundInput{Path: "bg.png", Layout: config.BackgroundLayout{Fit: config.FitCover, FillColor: "black"}},
		Characters: []config.CharacterOverlay{
			{Name: "aya", Visible: true, ImagePath: "aya/default.png", Anchor: config.AnchorBottomCenter},
		},
		AudioPath:    "speech.wav",
		Duration:     2.5,
		PreDuration:  0.1,
		PostDuration: 0.1,
		Video:        config.VideoParams{Width: 1920, Height: 1080, FPS: 30, PixFmt: "yuv420p", Codec: "libx264", CRF: 20, Profile: "high", Level: "4.1"},
		Audio:        config.AudioParams{SampleRate: 48000, Channels: 2, Codec: "aac", Bitrate: "192k"},
	}

	args, err := BuildClip(prober, reg, spec, "ffmpeg", "out.mp4")
	if err != nil {
		t.Fatalf("BuildClip error: %v", err)
	}
	if args[0] != "ffmpeg" {
		t.Errorf("args[0] = %q", args[0])
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("last arg = %q, want output path", args[len(args)-1])
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-filter_complex") {
		t.Error("expected -filter_complex flag")
	}
	if !strings.Contains(joined, "-t 2.5") {
		t.Errorf("expected -t 2.5, got %q", joined)
	}
	if strings.Count(joined, "-i ") < 3 {
		t.Errorf("expected at least 3 inputs (bg, speech, character), got: %q", joined)
	}
}

func TestBuildClipWaitLineHasNoCharacterInputs(t *testing.T) {
	prober := capability.New("ffmpeg-does-not-exist", nil)
	prober.SetFilterMode(capability.FilterModeCPU)
	reg := pluginregistry.New(nil)
	pluginregistry.RegisterBuiltins(reg)

	spec := ClipSpec{
		Background: BackgroundInput{Path: "bg.png", Layout: config.BackgroundLayout{Fit: config.FitStretch}},
		Duration:   1.0,
		Video:      config.VideoParams{Width: 1280, Height: 720, FPS: 30, PixFmt: "yuv420p", Codec: "libx264", CRF: 20, Level: "4.1"},
		Audio:      config.AudioParams{SampleRate: 48000, Channels: 2, Codec: "aac", Bitrate: "128k"},
	}
	args, err := BuildClip(prober, reg, spec, "ffmpeg", "wait.mp4")
	if err != nil {
		t.Fatalf("BuildClip error: %v", err)
	}
	if strings.Count(strings.Join(args, " "), "-i ") != 1 {
		t.Errorf("expected exactly 1 input (background only), got: %v", args)
	}
}
