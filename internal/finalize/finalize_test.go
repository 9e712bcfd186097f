package finalize

import (
	"testing"

	"github.com/scenecast/scenecast/internal/config"
)

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"", 0},
		{"0/0", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		got := parseFrameRate(c.in)
		d := got - c.want
		if d < 0 {
			d = -d
		}
		if d > 1e-6 {
			t.Errorf("parseFrameRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClipParamsEqual(t *testing.T) {
	a := clipParams{width: 1920, height: 1080, fps: 30, pixFmt: "yuv420p", videoCodec: "h264", audioCodec: "aac", sampleRate: 48000, channels: 2}
	b := a
	if !a.equal(b) {
		t.Fatal("identical params should be equal")
	}
	b.fps = 29.999
	if !a.equal(b) {
		t.Errorf("fps within epsilon should still be equal")
	}
	b.fps = 25
	if a.equal(b) {
		t.Errorf("differing fps should not be equal")
	}
	b = a
	b.pixFmt = "yuv444p"
	if a.equal(b) {
		t.Errorf("differing pix_fmt should not be equal")
	}
}

func TestEffectiveBGMPathSceneOverridesGlobal(t *testing.T) {
	global := &config.BGMConfig{Path: "/g.mp3"}
	sceneOverride := "/s.mp3"

	if got := effectiveBGMPath(config.Scene{BGM: &sceneOverride}, global); got != sceneOverride {
		t.Errorf("got %q, want scene override", got)
	}
	if got := effectiveBGMPath(config.Scene{}, global); got != "/g.mp3" {
		t.Errorf("got %q, want global path", got)
	}
	if got := effectiveBGMPath(config.Scene{}, nil); got != "" {
		t.Errorf("got %q, want empty with no BGM configured", got)
	}
}

func TestBuildBGMSegmentsMergesConsecutiveRunsAndSkipsNone(t *testing.T) {
	global := &config.BGMConfig{Path: "/g.mp3"}
	override := "/s.mp3"
	scenes := []config.Scene{
		{ID: "a"},                  // global
		{ID: "b"},                  // global, merges with a
		{ID: "c", BGM: &override},  // switches track
		{ID: "d", BGM: &override},  // merges with c
	}
	clips := []SceneClip{
		{SceneID: "a", Duration: 5},
		{SceneID: "b", Duration: 3},
		{SceneID: "c", Duration: 4},
		{SceneID: "d", Duration: 2},
	}

	segs := buildBGMSegments(scenes, clips, global)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segs), segs)
	}
	if segs[0].path != "/g.mp3" || segs[0].start != 0 || segs[0].duration != 8 {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].path != override || segs[1].start != 8 || segs[1].duration != 6 {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestBuildBGMSegmentsEmptyWhenNoBGM(t *testing.T) {
	scenes := []config.Scene{{ID: "a"}, {ID: "b"}}
	clips := []SceneClip{{SceneID: "a", Duration: 5}, {SceneID: "b", Duration: 3}}
	if segs := buildBGMSegments(scenes, clips, nil); len(segs) != 0 {
		t.Errorf("got %+v, want no segments", segs)
	}
}
