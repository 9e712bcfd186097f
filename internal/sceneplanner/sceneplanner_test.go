package sceneplanner

import (
	"testing"

	"github.com/scenecast/scenecast/internal/config"
)

func talkLine(chars []config.CharacterOverlay, insert *config.InsertSpec) config.Line {
	return config.Line{Kind: config.LineTalk, Text: "hi", Characters: chars, Insert: insert}
}

func waitLine(d float64) config.Line {
	return config.Line{Kind: config.LineWait, Duration: d}
}

func staticChar(name string) config.CharacterOverlay {
	return config.CharacterOverlay{
		Name: name, Expression: "default", ImagePath: "/x/" + name + ".png",
		Visible: true, Scale: 1.0, Anchor: config.AnchorBottomCenter,
	}
}

func TestComputePadDurationsUsesMaxOverVisibleCharacters(t *testing.T) {
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{
			{Visible: true, EnterEffect: config.EffectFade, EnterDuration: 0.2, LeaveEffect: config.EffectFade, LeaveDuration: 0.1},
			{Visible: true, EnterEffect: config.EffectSlideLeft, EnterDuration: 0.5, LeaveEffect: config.EffectNone},
			{Visible: false, EnterEffect: config.EffectFade, EnterDuration: 9},
		}, nil),
		waitLine(1.0),
	}
	pads := ComputePadDurations(lines, config.DefaultsConfig{EnterDuration: 0.3, LeaveDuration: 0.3})
	if pads[0].Pre != 0.5 {
		t.Errorf("pre = %v, want 0.5", pads[0].Pre)
	}
	if pads[0].Post != 0.1 {
		t.Errorf("post = %v, want 0.1", pads[0].Post)
	}
	if pads[1] != (PadDuration{}) {
		t.Errorf("wait line pad = %+v, want zero", pads[1])
	}
}

func TestComputePadDurationsDefaultsWhenDurationUnset(t *testing.T) {
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{
			{Visible: true, EnterEffect: config.EffectFade, EnterDuration: 0},
		}, nil),
	}
	pads := ComputePadDurations(lines, config.DefaultsConfig{EnterDuration: 0.3, LeaveDuration: 0.3})
	if pads[0].Pre != 0.3 {
		t.Errorf("pre = %v, want default 0.3", pads[0].Pre)
	}
}

func TestDetectStaticCharactersRequiresPresenceOnEveryTalkLine(t *testing.T) {
	a := staticChar("alice")
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{a}, nil),
		talkLine([]config.CharacterOverlay{a}, nil),
		talkLine(nil, nil), // alice missing here
	}
	out := DetectStaticCharacters(lines)
	if len(out) != 0 {
		t.Errorf("expected no static intersection, got %+v", out)
	}
}

func TestDetectStaticCharactersFindsIntersection(t *testing.T) {
	a := staticChar("alice")
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{a}, nil),
		talkLine([]config.CharacterOverlay{a}, nil),
		waitLine(1),
		talkLine([]config.CharacterOverlay{a}, nil),
	}
	out := DetectStaticCharacters(lines)
	if len(out) != 1 || out[0].Name != "alice" {
		t.Errorf("out = %+v, want [alice]", out)
	}
}

func TestDetectStaticCharactersExcludesAnimatedOverlay(t *testing.T) {
	animated := staticChar("bob")
	animated.EnterEffect = config.EffectFade
	animated.EnterDuration = 0.3
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{animated}, nil),
		talkLine([]config.CharacterOverlay{animated}, nil),
	}
	out := DetectStaticCharacters(lines)
	if len(out) != 0 {
		t.Errorf("expected animated overlay excluded, got %+v", out)
	}
}

func TestDetectCommonInsertRequiresExactMatch(t *testing.T) {
	ins1 := &config.InsertSpec{Path: "/x.png", X: 10, Y: 20, Scale: 1}
	ins2 := &config.InsertSpec{Path: "/x.png", X: 10, Y: 21, Scale: 1}
	lines := []config.Line{talkLine(nil, ins1), talkLine(nil, ins2)}
	if got := DetectCommonInsert(lines); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestDetectCommonInsertMatches(t *testing.T) {
	ins := &config.InsertSpec{Path: "/x.png", X: 10, Y: 20, Scale: 1}
	lines := []config.Line{talkLine(nil, ins), talkLine(nil, ins)}
	got := DetectCommonInsert(lines)
	if got == nil || got.Path != "/x.png" {
		t.Errorf("got = %+v", got)
	}
}

func TestDetectRunsFindsMaximalConsecutiveRuns(t *testing.T) {
	a := staticChar("alice")
	b := staticChar("bob")
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{a}, nil), // 0
		talkLine([]config.CharacterOverlay{a}, nil), // 1
		talkLine([]config.CharacterOverlay{b}, nil), // 2 (breaks run)
		waitLine(1),                                 // 3 (breaks run)
		talkLine([]config.CharacterOverlay{a}, nil), // 4
		talkLine([]config.CharacterOverlay{a}, nil), // 5
		talkLine([]config.CharacterOverlay{a}, nil), // 6
	}
	runs := DetectRuns(lines)
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2: %+v", len(runs), runs)
	}
	if runs[0].Start != 0 || runs[0].End != 2 {
		t.Errorf("runs[0] = %+v", runs[0])
	}
	if runs[1].Start != 4 || runs[1].End != 7 {
		t.Errorf("runs[1] = %+v", runs[1])
	}
}

func TestDetectRunsOmitsSingleLineAndEmptySignature(t *testing.T) {
	a := staticChar("alice")
	lines := []config.Line{
		talkLine([]config.CharacterOverlay{a}, nil),
		talkLine(nil, nil),
		talkLine([]config.CharacterOverlay{a}, nil),
	}
	runs := DetectRuns(lines)
	if len(runs) != 0 {
		t.Errorf("runs = %+v, want none (no run >= 2 long)", runs)
	}
}

func TestNeedsSceneBase(t *testing.T) {
	scene := config.Scene{Lines: []config.Line{talkLine(nil, nil), talkLine(nil, nil), talkLine(nil, nil)}}
	plan := Plan{}
	if !plan.NeedsSceneBase(scene, true, 3) {
		t.Error("video bg with line_count >= threshold should need scene-base")
	}
	if plan.NeedsSceneBase(scene, true, 10) {
		t.Error("video bg below threshold should not need scene-base")
	}
	imgScene := config.Scene{Lines: []config.Line{talkLine(nil, nil), talkLine(nil, nil)}}
	if !plan.NeedsSceneBase(imgScene, false, 3) {
		t.Error("image bg with >= 2 lines should need scene-base")
	}
	staticPlan := Plan{StaticCharacters: []config.CharacterOverlay{staticChar("x")}}
	oneLine := config.Scene{Lines: []config.Line{talkLine(nil, nil)}}
	if !staticPlan.NeedsSceneBase(oneLine, true, 3) {
		t.Error("static overlays present should force scene-base regardless of line count")
	}
}
