package videophase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/filtergraph"
)

func TestChooseBackgroundPrefersSceneBaseOverRunBaseOverNorm(t *testing.T) {
	sceneBase := &bakedBase{path: "/c/scene_base.mp4"}
	runBase := &bakedBase{path: "/c/run_base.mp4"}
	normBase := &bakedBase{path: "/c/norm.mp4"}

	bg := chooseBackground("/raw/bg.png", config.BackgroundLayout{}, sceneBase, runBase, normBase, 5.0, 2.0)
	if bg.Path != sceneBase.path || bg.Seek != 5.0 || !bg.PreScaled {
		t.Errorf("got %+v, want scene-base at seek 5.0", bg)
	}

	bg = chooseBackground("/raw/bg.png", config.BackgroundLayout{}, nil, runBase, normBase, 5.0, 2.0)
	if bg.Path != runBase.path || bg.Seek != 2.0 {
		t.Errorf("got %+v, want run-base at seek 2.0", bg)
	}

	bg = chooseBackground("/raw/bg.png", config.BackgroundLayout{}, nil, nil, normBase, 5.0, 2.0)
	if bg.Path != normBase.path || bg.Seek != 5.0 {
		t.Errorf("got %+v, want norm-base at seek 5.0", bg)
	}

	bg = chooseBackground("/raw/bg.png", config.BackgroundLayout{}, nil, nil, nil, 5.0, 2.0)
	if bg.Path != "/raw/bg.png" || bg.PreScaled {
		t.Errorf("got %+v, want raw background unscaled", bg)
	}
}

func TestStripBakedRemovesOnlyBakedNames(t *testing.T) {
	chars := []config.CharacterOverlay{{Name: "alice"}, {Name: "bob"}}
	base := &bakedBase{bakedCharacters: map[string]bool{"alice": true}}
	out := stripBaked(chars, base)
	if len(out) != 1 || out[0].Name != "bob" {
		t.Errorf("out = %+v, want [bob]", out)
	}

	if got := stripBaked(chars, nil); len(got) != 2 {
		t.Errorf("nil base should strip nothing, got %+v", got)
	}
}

func TestIsCPUOverlayLine(t *testing.T) {
	sub := "hi"
	cases := []struct {
		name string
		line config.Line
		want bool
	}{
		{"plain talk", config.Line{Kind: config.LineTalk}, false},
		{"subtitle", config.Line{Kind: config.LineTalk, Subtitle: &sub}, true},
		{"insert", config.Line{Kind: config.LineTalk, Insert: &config.InsertSpec{Path: "x"}}, true},
		{"visible char", config.Line{Kind: config.LineTalk, Characters: []config.CharacterOverlay{{Visible: true}}}, true},
		{"invisible char only", config.Line{Kind: config.LineTalk, Characters: []config.CharacterOverlay{{Visible: false}}}, false},
	}
	for _, c := range cases {
		if got := isCPUOverlayLine(c.line); got != c.want {
			t.Errorf("%s: isCPUOverlayLine = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCollectSubtitleCuesSkipsLinesWithoutSubtitle(t *testing.T) {
	a := "line a"
	works := []lineWork{
		{line: config.Line{Kind: config.LineTalk, Subtitle: &a}, startAt: 0, duration: 2},
		{line: config.Line{Kind: config.LineTalk}, startAt: 2, duration: 1},
		{line: config.Line{Kind: config.LineWait}, startAt: 3, duration: 1},
	}
	cues := collectSubtitleCues(works)
	if len(cues) != 1 || cues[0].text != "line a" || cues[0].startTime != 0 {
		t.Errorf("cues = %+v", cues)
	}
}

func TestClipWorkersForCPURatioStaysWithinBounds(t *testing.T) {
	for _, ratio := range []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0} {
		w := clipWorkersForCPURatio(ratio)
		if w < 2 || w > 4 {
			t.Errorf("ratio %v -> workers %d, want in [2,4]", ratio, w)
		}
	}
}

func TestPercentile90(t *testing.T) {
	elapsed := []time.Duration{
		1 * time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second, 5 * time.Second,
		6 * time.Second, 7 * time.Second, 8 * time.Second, 9 * time.Second, 10 * time.Second,
	}
	p90 := percentile90(elapsed)
	if p90 != 9*time.Second {
		t.Errorf("p90 = %v, want 9s", p90)
	}
}

func TestAutotunerDecidesAfterProfileCountAndPersists(t *testing.T) {
	dir := t.TempDir()
	prober := capability.New("ffmpeg-does-not-exist", nil)
	tuner := newAutotuner(3, dir, prober, nopLogger{})

	tuner.record(true, 1*time.Second)
	tuner.record(true, 1*time.Second)
	if tuner.decided {
		t.Fatal("should not decide before profileCount samples")
	}
	tuner.record(false, 1*time.Second)
	if !tuner.decided {
		t.Fatal("should decide once profileCount samples collected")
	}
	if prober.FilterMode() != capability.FilterModeCPU {
		t.Errorf("ratio 2/3 >= 0.5 should force CPU mode, got %v", prober.FilterMode())
	}

	hintPath := filepath.Join(dir, autotuneHintFile)
	if _, err := os.Stat(hintPath); err != nil {
		t.Fatalf("expected hint file written: %v", err)
	}
}

func TestAutotunerLoadsApplicableHintAndSkipsProfiling(t *testing.T) {
	dir := t.TempDir()
	prober := capability.New("ffmpeg-does-not-exist", nil)
	_ = filtergraph.BackgroundInput{} // keep filtergraph import meaningful across package tests

	seed := newAutotuner(1, dir, prober, nopLogger{})
	seed.record(true, 1*time.Second)

	prober2 := capability.New("ffmpeg-does-not-exist", nil)
	reloaded := newAutotuner(4, dir, prober2, nopLogger{})
	if !reloaded.decided {
		t.Fatal("expected reloaded autotuner to skip profiling using the persisted hint")
	}
}
