package filtergraph

import "fmt"

// BuildFormatNormalization appends the final pixel-format stage per
// spec.md §4.5 step 8. When usedCUDA is true and the chosen encoder is
// also a CUDA encoder (NVENC), the frame can stay on the GPU and
// hwdownload is skipped; otherwise the composited frame is normalized to
// yuv420p for a CPU/non-CUDA encoder to consume.
func BuildFormatNormalization(g *Graph, usedCUDA, encodeWithCUDA bool, bgLabel, outLabel string) string {
	if usedCUDA && encodeWithCUDA {
		if bgLabel == outLabel {
			return bgLabel
		}
		g.AddChain(fmt.Sprintf("%snull%s", Label(bgLabel), Label(outLabel)))
		return outLabel
	}
	g.AddChain(fmt.Sprintf("%sformat=yuv420p%s", Label(bgLabel), Label(outLabel)))
	return outLabel
}
