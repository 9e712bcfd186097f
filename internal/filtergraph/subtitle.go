package filtergraph

import (
	"fmt"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

// SubtitleRenderer is the external render_subtitle_png collaborator
// (spec.md §4.5 step 6): given normalized subtitle text and a style, it
// rasterizes a PNG and reports its pixel size.
type SubtitleRenderer interface {
	RenderPNG(text string, style config.SubtitleStyle) (path string, w, h int, err error)
}

// BuildSubtitleOverlay adds text's rasterized PNG as a new input and
// overlays it onto bgLabel for [0, duration), applying each
// plugin-provided subtitle effect (e.g. subtitle:bounce) in turn to the y
// expression, each one rewriting the y produced by the one before. Returns the output label and the PNG's reported size, or an
// error if rasterization fails.
func BuildSubtitleOverlay(g *Graph, reg *pluginregistry.Registry, renderer SubtitleRenderer, text string, style config.SubtitleStyle, effects []config.Effect, duration float64, bgLabel, outLabel string) (string, int, int, error) {
	return BuildSubtitleOverlayAt(g, reg, renderer, text, style, effects, 0, duration, bgLabel, outLabel)
}

// BuildSubtitleOverlayAt is BuildSubtitleOverlay generalized to a clip
// whose own t=0 is not the overlay's start: startTime shifts both the
// enable window and, via SubtitleContext.TimeExpr, what "elapsed time"
// subtitle effects animate against. Used by internal/videophase's scene-
// level subtitle post-overlay pass (spec.md §4.8 step 6), where every
// line's subtitle is burned in a single invocation against the
// concatenated scene clip's absolute timeline.
func BuildSubtitleOverlayAt(g *Graph, reg *pluginregistry.Registry, renderer SubtitleRenderer, text string, style config.SubtitleStyle, effects []config.Effect, startTime, duration float64, bgLabel, outLabel string) (string, int, int, error) {
	path, w, h, err := renderer.RenderPNG(text, style)
	if err != nil {
		return "", 0, 0, fmt.Errorf("filtergraph: render subtitle png: %w", err)
	}

	idx := g.AddInput(path)
	in := StreamRef(idx, "v")
	prepLabel := outLabel + "_rgba"
	g.AddChain(fmt.Sprintf("%sformat=rgba%s", in, Label(prepLabel)))

	x, y := anchorOffset(style.Anchor, "main_w", "main_h", "overlay_w", "overlay_h", style.Position.X, style.Position.Y)

	timeExpr := ""
	if startTime != 0 {
		timeExpr = fmt.Sprintf("(t-%g)", startTime)
	}
	ctx := pluginregistry.SubtitleContext{Duration: duration, InputLabel: prepLabel, BaseY: y, TimeExpr: timeExpr}
	for _, eff := range effects {
		if frag, ok := reg.ResolveSubtitleEffect(eff, ctx); ok && frag != "" {
			y = frag
			ctx.BaseY = y
		}
	}

	enable := fmt.Sprintf("between(t,%g,%g)", startTime, startTime+duration)
	chain := fmt.Sprintf("%s%soverlay=x=%s:y=%s:enable='%s'%s", Label(bgLabel), Label(prepLabel), x, y, enable, Label(outLabel))
	g.AddChain(chain)
	return outLabel, w, h, nil
}
