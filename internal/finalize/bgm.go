package finalize

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/filtergraph"
)

// bgmSegment is one maximal run of consecutive scenes sharing the same
// effective BGM path (a scene's own BGM overrides the global track for its
// own duration; see DESIGN.md's Open Question decision for this package).
type bgmSegment struct {
	path     string
	start    float64
	duration float64
}

// effectiveBGMPath resolves, per scene, whichever track actually plays:
// the scene's own override if set, else the global track if configured.
func effectiveBGMPath(scene config.Scene, global *config.BGMConfig) string {
	if scene.BGM != nil && *scene.BGM != "" {
		return *scene.BGM
	}
	if global != nil {
		return global.Path
	}
	return ""
}

// buildBGMSegments groups scenes into maximal consecutive runs sharing one
// effective BGM path, skipping runs with no BGM at all.
func buildBGMSegments(scenes []config.Scene, clips []SceneClip, global *config.BGMConfig) []bgmSegment {
	var segs []bgmSegment
	start := 0.0
	for i, c := range clips {
		path := ""
		if i < len(scenes) {
			path = effectiveBGMPath(scenes[i], global)
		} else if global != nil {
			path = global.Path
		}
		if path != "" && len(segs) > 0 && segs[len(segs)-1].path == path {
			segs[len(segs)-1].duration += c.Duration
		} else if path != "" {
			segs = append(segs, bgmSegment{path: path, start: start, duration: c.Duration})
		}
		start += c.Duration
	}
	return segs
}

// mixBGM mixes every configured BGM segment under videoPath's audio track,
// applying global volume/start_offset/fade_in/fade_out to the overall BGM
// timeline (fade-in on the first segment, fade-out on the last), and
// returns videoPath unchanged if no scene has an effective BGM track.
func (f *Finalizer) mixBGM(ctx context.Context, videoPath string, scenes []config.Scene, clips []SceneClip, global *config.BGMConfig, totalDuration float64, outPath string) (string, error) {
	segs := buildBGMSegments(scenes, clips, global)
	if len(segs) == 0 {
		return videoPath, nil
	}

	volume := 0.3
	startOffset := 0.0
	fadeIn := 0.0
	fadeOut := 0.0
	if global != nil {
		volume = global.Volume
		startOffset = global.StartOffset
		fadeIn = global.FadeIn
		fadeOut = global.FadeOut
	}

	g := filtergraph.NewGraph()
	mainIdx := g.AddInput(videoPath)

	var mixRefs string
	for i, seg := range segs {
		segIdx := g.AddInputSeek(seg.path, startOffset)
		label := fmt.Sprintf("bgm%d", i)
		chain := fmt.Sprintf("%svolume=%g,atrim=duration=%g", filtergraph.StreamRef(segIdx, "a"), volume, seg.duration)
		if i == 0 && fadeIn > 0 {
			chain += fmt.Sprintf(",afade=t=in:st=0:d=%g", fadeIn)
		}
		if i == len(segs)-1 && fadeOut > 0 {
			fadeStart := seg.duration - fadeOut
			if fadeStart < 0 {
				fadeStart = 0
			}
			chain += fmt.Sprintf(",afade=t=out:st=%g:d=%g", fadeStart, fadeOut)
		}
		delayMs := int(seg.start * 1000)
		chain += fmt.Sprintf(",adelay=%d|%d%s", delayMs, delayMs, filtergraph.Label(label))
		g.AddChain(chain)
		mixRefs += filtergraph.Label(label)
	}

	mixInputs := len(segs) + 1
	g.AddChain(fmt.Sprintf("%s%samix=inputs=%d:duration=first:dropout_transition=0%s",
		filtergraph.StreamRef(mainIdx, "a"), mixRefs, mixInputs, filtergraph.Label("mixed")))

	args := []string{f.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error"}
	args = append(args, g.Inputs()...)
	args = append(args, "-filter_complex", g.Render())
	args = append(args, "-map", fmt.Sprintf("%d:v", mainIdx), "-map", filtergraph.Label("mixed"))
	args = append(args, "-c:v", "copy", "-c:a", f.Audio.Codec, "-b:a", f.Audio.Bitrate,
		"-ar", strconv.Itoa(f.Audio.SampleRate), "-ac", strconv.Itoa(f.Audio.Channels), "-shortest", outPath)

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return "", &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
	}
	return outPath, nil
}
