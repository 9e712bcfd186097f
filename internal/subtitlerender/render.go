// Package subtitlerender implements spec.md's external render_subtitle_png
// collaborator (§4.5 step 6): given subtitle text and a style, it
// rasterizes a PNG and reports its pixel size. Rendering is pure Go (no
// system font service), word-wrapped against the style's max_width_frac
// and scaled to the requested font size, with a stroked outline drawn
// before the fill so it reads over any background.
package subtitlerender

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
)

// baseGlyphWidth and baseGlyphHeight are basicfont.Face7x13's native cell
// size; rendered text is composited at this size and then scaled to the
// style's requested font size (there being no TTF asset bundled).
const (
	baseGlyphWidth  = 7
	baseGlyphHeight = 13
	baseLineHeight  = 13
	basePointSize   = 13
)

// Renderer rasterizes subtitle PNGs, caching one file per distinct
// (text, style, frame_width) combination.
type Renderer struct {
	Cache      *cache.Manager
	FrameWidth int // reference width for resolving style.MaxWidthFrac to pixels
}

// NewRenderer returns a Renderer that wraps lines to frameWidth *
// style.MaxWidthFrac pixels and caches output PNGs in c.
func NewRenderer(c *cache.Manager, frameWidth int) *Renderer {
	return &Renderer{Cache: c, FrameWidth: frameWidth}
}

// RenderPNG implements internal/filtergraph.SubtitleRenderer.
func (r *Renderer) RenderPNG(text string, style config.SubtitleStyle) (string, int, int, error) {
	if text == "" {
		return "", 0, 0, fmt.Errorf("subtitlerender: empty text")
	}

	key := cache.Key{
		"kind":           "subtitle_png",
		"text":           text,
		"font_family":    style.FontFamily,
		"font_size":      style.FontSize,
		"color":          style.Color,
		"outline_color":  style.OutlineColor,
		"outline_width":  style.OutlineWidth,
		"max_width_frac": style.MaxWidthFrac,
		"frame_width":    r.FrameWidth,
	}

	var w, h int
	path, err := r.Cache.GetOrCreate(key, "subtitle", "png", func(outPath string) (string, error) {
		img, renderErr := r.render(text, style)
		if renderErr != nil {
			return "", renderErr
		}
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
		if writeErr := writePNG(outPath, img); writeErr != nil {
			return "", writeErr
		}
		return outPath, nil
	})
	if err != nil {
		return "", 0, 0, fmt.Errorf("subtitlerender: %w", err)
	}

	// A cache hit skips the closure above, so w/h must be recovered from
	// the file itself rather than the (unset) closure locals.
	if w == 0 || h == 0 {
		w, h, err = pngSize(path)
		if err != nil {
			return "", 0, 0, fmt.Errorf("subtitlerender: read cached png: %w", err)
		}
	}
	return path, w, h, nil
}

// render wraps text into lines fitting maxWidthPx, then draws each line
// twice (outline offsets, then fill) onto a transparent canvas scaled to
// style.FontSize.
func (r *Renderer) render(text string, style config.SubtitleStyle) (image.Image, error) {
	maxWidthPx := int(float64(r.FrameWidth) * style.MaxWidthFrac)
	if maxWidthPx <= 0 {
		maxWidthPx = r.FrameWidth
	}
	scale := float64(style.FontSize) / float64(basePointSize)
	if scale <= 0 {
		scale = 1
	}
	maxGlyphsPerLine := int(float64(maxWidthPx) / (baseGlyphWidth * scale))
	if maxGlyphsPerLine < 1 {
		maxGlyphsPerLine = 1
	}

	lines := wrapText(text, maxGlyphsPerLine)

	baseWidth := 0
	for _, l := range lines {
		if w := len(l) * baseGlyphWidth; w > baseWidth {
			baseWidth = w
		}
	}
	baseHeight := len(lines) * baseLineHeight
	outline := style.OutlineWidth
	canvasW := baseWidth + outline*2
	canvasH := baseHeight + outline*2
	if canvasW <= 0 || canvasH <= 0 {
		return nil, fmt.Errorf("empty render canvas")
	}

	base := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))

	fillCol := parseColor(style.Color, color.White)
	outlineCol := parseColor(style.OutlineColor, color.Black)
	face := basicfont.Face7x13

	if outline > 0 {
		for dy := -outline; dy <= outline; dy++ {
			for dx := -outline; dx <= outline; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				drawLines(base, face, lines, outline+dx, outline+dy, outlineCol)
			}
		}
	}
	drawLines(base, face, lines, outline, outline, fillCol)

	if scale == 1 {
		return base, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, int(float64(canvasW)*scale), int(float64(canvasH)*scale)))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Over, nil)
	return scaled, nil
}

// wrapText greedily packs words into lines of at most maxRunes runes,
// splitting any single word longer than maxRunes at the limit.
func wrapText(text string, maxRunes int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, word := range words {
			for len([]rune(word)) > maxRunes {
				r := []rune(word)
				word = string(r[maxRunes:])
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, string(r[:maxRunes]))
			}
			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}
			if len([]rune(candidate)) > maxRunes && cur != "" {
				lines = append(lines, cur)
				cur = word
			} else {
				cur = candidate
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}

func drawLines(dst draw.Image, face font.Face, lines []string, originX, originY int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(originX, originY+(i+1)*baseLineHeight-3)
		d.DrawString(line)
	}
}

func parseColor(name string, fallback color.Color) color.Color {
	if c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	if c, ok := parseHexColor(name); ok {
		return c
	}
	return fallback
}

var namedColors = map[string]color.Color{
	"white":   color.RGBA{255, 255, 255, 255},
	"black":   color.RGBA{0, 0, 0, 255},
	"red":     color.RGBA{255, 0, 0, 255},
	"green":   color.RGBA{0, 200, 0, 255},
	"blue":    color.RGBA{0, 0, 255, 255},
	"yellow":  color.RGBA{255, 220, 0, 255},
	"cyan":    color.RGBA{0, 255, 255, 255},
	"magenta": color.RGBA{255, 0, 255, 255},
	"gray":    color.RGBA{128, 128, 128, 255},
	"grey":    color.RGBA{128, 128, 128, 255},
}

func parseHexColor(s string) (color.Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return nil, false
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, false
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, true
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func pngSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
