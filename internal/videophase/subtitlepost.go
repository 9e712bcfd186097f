package videophase

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/filtergraph"
)

// subtitleCue is one line's effective subtitle, with its absolute
// position on the concatenated scene's timeline.
type subtitleCue struct {
	startTime float64
	duration  float64
	text      string
	effects   []config.Effect
}

// collectSubtitleCues gathers one cue per line with non-empty effective
// subtitle text, spec.md §4.8 step 6.
func collectSubtitleCues(works []lineWork) []subtitleCue {
	var cues []subtitleCue
	for _, w := range works {
		if w.line.Kind != config.LineTalk || w.line.Subtitle == nil || *w.line.Subtitle == "" {
			continue
		}
		cues = append(cues, subtitleCue{
			startTime: w.startAt,
			duration:  w.duration,
			text:      *w.line.Subtitle,
			effects:   w.line.SubtitleEffects,
		})
	}
	return cues
}

// overlaySubtitles implements spec.md §4.8 step 6: burn every cue onto
// concatPath in a single ffmpeg invocation, rather than per-line. Returns
// concatPath unchanged if there is nothing to burn (no subtitle renderer
// configured, or no line has subtitle text).
func (r *Renderer) overlaySubtitles(ctx context.Context, concatPath string, cues []subtitleCue, outPath string) (string, error) {
	if r.Renderer == nil || len(cues) == 0 {
		return concatPath, nil
	}

	g := filtergraph.NewGraph()
	bgIdx := g.AddInput(concatPath)
	cur := "scene_in"
	g.AddChain(fmt.Sprintf("%scopy%s", filtergraph.StreamRef(bgIdx, "v"), filtergraph.Label(cur)))

	for i, cue := range cues {
		next := fmt.Sprintf("sub%d", i)
		var err error
		cur, _, _, err = filtergraph.BuildSubtitleOverlayAt(g, r.Registry, r.Renderer, cue.text, r.Subtitle, cue.effects, cue.startTime, cue.duration, cur, next)
		if err != nil {
			return "", err
		}
	}

	args := []string{r.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error"}
	args = append(args, g.Inputs()...)
	args = append(args, "-filter_complex", g.Render())
	args = append(args, "-map", filtergraph.Label(cur), "-map", fmt.Sprintf("%d:a", bgIdx))
	args = append(args, "-c:v", r.Video.Codec, "-crf", strconv.Itoa(r.Video.CRF), "-pix_fmt", r.Video.PixFmt,
		"-c:a", "copy", outPath)

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return "", &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
	}
	return outPath, nil
}
