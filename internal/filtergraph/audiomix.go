package filtergraph

import (
	"fmt"

	"github.com/scenecast/scenecast/internal/config"
)

// BuildAudioChain assembles the clip's audio stage per spec.md §4.5 step
// 9. hasSpeech is false only for a wait line (no audio_path). insertIdx is
// the insert media's input index if it carries its own audio, else -1.
// preDurationMs/duration come from the pad-duration step (§4.8 step 1).
func BuildAudioChain(g *Graph, a config.AudioParams, hasSpeech bool, insertIdx int, preDurationMs int, duration float64, outLabel string) string {
	var srcLabel string
	switch {
	case hasSpeech && insertIdx >= 0:
		srcLabel = outLabel + "_mixsrc"
		g.AddChain(fmt.Sprintf("%s%samix=inputs=2:duration=longest%s", StreamRef(1, "a"), StreamRef(insertIdx, "a"), Label(srcLabel)))
	case hasSpeech:
		srcLabel = outLabel + "_speech"
		g.AddChain(fmt.Sprintf("%sanull%s", StreamRef(1, "a"), Label(srcLabel)))
	case insertIdx >= 0:
		srcLabel = outLabel + "_insertonly"
		g.AddChain(fmt.Sprintf("%sanull%s", StreamRef(insertIdx, "a"), Label(srcLabel)))
	default:
		srcLabel = outLabel + "_null"
		g.AddChain(fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d%s", a.SampleRate, Label(srcLabel)))
	}

	delayedLabel := outLabel + "_delayed"
	g.AddChain(fmt.Sprintf("%sadelay=%d:all=1%s", Label(srcLabel), preDurationMs, Label(delayedLabel)))
	g.AddChain(fmt.Sprintf("%sapad=pad_dur=%g%s", Label(delayedLabel), duration, Label(outLabel)))
	return outLabel
}
