package filtergraph

import (
	"strconv"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

// BuildScreenEffects applies each of effects (e.g. screen:shake_screen) in
// order to bgLabel, per spec.md §4.5 step 7: each effect pads the whole
// composition and crops with a time-varying offset. Amplitudes are not
// clamped to the frame size here or in the builder (which receives clip
// duration only, not W/H); they are used as given in the effect params.
func BuildScreenEffects(g *Graph, reg *pluginregistry.Registry, effects []config.Effect, duration float64, bgLabel string, outLabel string) string {
	if len(effects) == 0 {
		return bgLabel
	}
	frags := reg.ResolveOverlayEffects(effects, duration)
	if len(frags) == 0 {
		return bgLabel
	}

	cur := bgLabel
	for i, frag := range frags {
		next := outLabel
		if i < len(frags)-1 {
			next = labelForStage(outLabel, i)
		}
		g.AddChain(Label(cur) + frag + Label(next))
		cur = next
	}
	return cur
}

func labelForStage(prefix string, i int) string {
	return prefix + "_s" + strconv.Itoa(i)
}
