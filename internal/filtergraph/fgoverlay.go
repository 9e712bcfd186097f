package filtergraph

import (
	"fmt"

	"github.com/scenecast/scenecast/internal/config"
)

// BuildForegroundOverlay composites one static foreground overlay (a logo
// or UI frame, not a character) onto bgLabel at its fixed anchor position.
// Unlike character overlays these never animate: no enter/leave, no
// char:* effects.
func BuildForegroundOverlay(g *Graph, inputIdx int, fg config.ForegroundOverlay, bgLabel, outLabel string) string {
	in := StreamRef(inputIdx, "v")
	prepLabel := outLabel + "_rgba"

	var prep string
	if fg.Scale != 1.0 && fg.Scale > 0 {
		prep = fmt.Sprintf("format=rgba,scale=iw*%g:ih*%g", fg.Scale, fg.Scale)
	} else {
		prep = "format=rgba"
	}
	g.AddChain(fmt.Sprintf("%s%s%s", in, prep, Label(prepLabel)))

	x, y := anchorOffset(fg.Anchor, "main_w", "main_h", "overlay_w", "overlay_h", fg.Position.X, fg.Position.Y)
	g.AddChain(fmt.Sprintf("%s%soverlay=x=%s:y=%s%s", Label(bgLabel), Label(prepLabel), x, y, Label(outLabel)))
	return outLabel
}
