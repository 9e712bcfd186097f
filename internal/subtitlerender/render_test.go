package subtitlerender

import (
	"image/color"
	"testing"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
)

func TestWrapTextSplitsOnWordBoundaries(t *testing.T) {
	lines := wrapText("the quick brown fox jumps", 10)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %v", lines)
	}
	for _, l := range lines {
		if len([]rune(l)) > 10 {
			t.Errorf("line %q exceeds max width", l)
		}
	}
}

func TestWrapTextSplitsOverlongWord(t *testing.T) {
	lines := wrapText("supercalifragilisticexpialidocious", 10)
	if len(lines) < 3 {
		t.Fatalf("expected an overlong word to split across lines, got %v", lines)
	}
}

func TestWrapTextPreservesExplicitNewlines(t *testing.T) {
	lines := wrapText("line one\nline two", 40)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
}

func TestParseColorNamedAndHex(t *testing.T) {
	if c := parseColor("White", color.Black); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("named color lookup case-insensitive failed: %v", c)
	}
	if c := parseColor("#ff0000", color.Black); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("hex color parse failed: %v", c)
	}
	if c := parseColor("not-a-color", color.RGBA{1, 2, 3, 4}); c != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("unrecognized color should fall back, got %v", c)
	}
}

func TestRenderPNGProducesCachedFileWithSize(t *testing.T) {
	mgr, err := cache.New(t.TempDir(), 0, 0, false, false)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	r := NewRenderer(mgr, 1920)
	style := config.SubtitleStyle{FontFamily: "test", FontSize: 48, Color: "white", OutlineColor: "black", OutlineWidth: 2, MaxWidthFrac: 0.9}

	path, w, h, err := r.RenderPNG("hello world", style)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if w <= 0 || h <= 0 {
		t.Fatalf("got zero-sized image %dx%d", w, h)
	}

	path2, w2, h2, err := r.RenderPNG("hello world", style)
	if err != nil {
		t.Fatalf("RenderPNG (cached): %v", err)
	}
	if path2 != path {
		t.Errorf("expected identical (text, style) to hit cache at same path, got %q vs %q", path2, path)
	}
	if w2 != w || h2 != h {
		t.Errorf("cached lookup returned different size: %dx%d vs %dx%d", w2, h2, w, h)
	}
}

func TestRenderPNGRejectsEmptyText(t *testing.T) {
	mgr, err := cache.New(t.TempDir(), 0, 0, false, false)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	r := NewRenderer(mgr, 1920)
	if _, _, _, err := r.RenderPNG("", config.SubtitleStyle{FontSize: 48, MaxWidthFrac: 0.9}); err == nil {
		t.Error("expected error for empty text")
	}
}
