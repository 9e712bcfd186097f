package filtergraph

import (
	"fmt"

	"github.com/scenecast/scenecast/internal/config"
)

// BuildInsertOverlay composites an inline image/video insert onto bgLabel
// at its fixed (X, Y, Scale). Insert media is just another RGBA overlay
// from the filter-graph's point of view; its audio (if HasAudio) is
// threaded in separately by BuildAudioChain using insertAudioIdx.
func BuildInsertOverlay(g *Graph, inputIdx int, ins config.InsertSpec, bgLabel, outLabel string) string {
	in := StreamRef(inputIdx, "v")
	prepLabel := outLabel + "_rgba"

	scale := ins.Scale
	if scale <= 0 {
		scale = 1.0
	}
	g.AddChain(fmt.Sprintf("%sformat=rgba,scale=iw*%g:ih*%g%s", in, scale, scale, Label(prepLabel)))
	g.AddChain(fmt.Sprintf("%s%soverlay=x=%d:y=%d%s", Label(bgLabel), Label(prepLabel), ins.X, ins.Y, Label(outLabel)))
	return outLabel
}
