// Package filtergraph builds and runs the single-clip ffmpeg invocation
// described by spec.md §4.5: one -filter_complex graph per talk or wait
// clip, composing background, inserts, characters, face animation,
// subtitles, and screen effects, then mapping to an encoded output.
package filtergraph

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

// BackgroundInput describes clip 0, the background, per spec.md §4.5
// step 2.
type BackgroundInput struct {
	Path      string
	Layout    config.BackgroundLayout
	PreScaled bool    // already fitted to W/H (scene-base/run-base reuse)
	Seek      float64 // input-side -ss into Path, for a sub-offset of a pre-rendered scene-base/run-base video
}

// ClipSpec is everything BuildClip needs to render one line's clip. It is
// assembled by internal/videophase from a scene's Line, the matching
// audiophase.LineData, and the run's static config.
type ClipSpec struct {
	Background        BackgroundInput
	BackgroundEffects  []config.Effect
	Insert             *config.InsertSpec
	FGOverlays         []config.ForegroundOverlay
	Characters         []config.CharacterOverlay
	FaceAnim           *audiophase.FaceAnim
	SubtitleText       string
	SubtitleStyle      config.SubtitleStyle
	SubtitleEffects    []config.Effect
	SubtitleRenderer   SubtitleRenderer // nil when subtitles are deferred to scene-level post-overlay (spec.md §4.8 step 6)
	ScreenEffects      []config.Effect
	AudioPath          string // empty for a wait line
	Duration           float64
	PreDuration        float64
	PostDuration       float64
	Video              config.VideoParams
	Audio              config.AudioParams
	ForceCPU           bool
	AllowExperimentalAlphaGPU bool
}

// clipInputs assigns input indices to every stream BuildClip needs, in
// the fixed order spec.md §4.5 documents: 0=background, 1=speech audio,
// 2..=subtitle PNG, insert media, character images, face-anim PNGs. Face
// and subtitle PNGs are appended lazily by their own builder functions
// since they are not always present.
type clipInputs struct {
	bgIdx      int
	speechIdx  int
	insertIdx  int
	charIdx    []int
}

func addInputs(g *Graph, spec ClipSpec) clipInputs {
	ci := clipInputs{insertIdx: -1, speechIdx: -1}
	ci.bgIdx = g.AddInputSeek(spec.Background.Path, spec.Background.Seek)
	if spec.AudioPath != "" {
		ci.speechIdx = g.AddInput(spec.AudioPath)
	}
	if spec.Insert != nil {
		ci.insertIdx = g.AddInput(spec.Insert.Path)
	}
	ci.charIdx = make([]int, len(spec.Characters))
	for i, co := range spec.Characters {
		if !co.Visible {
			ci.charIdx[i] = -1
			continue
		}
		ci.charIdx[i] = g.AddInput(co.ImagePath)
	}
	return ci
}

// hasAlphaOverlay reports whether spec requires any RGBA-alpha overlay
// compositing, per spec.md §4.5 step 1.
func hasAlphaOverlay(spec ClipSpec) bool {
	for _, co := range spec.Characters {
		if co.Visible {
			return true
		}
	}
	if spec.Insert != nil {
		return true
	}
	if len(spec.FGOverlays) > 0 {
		return true
	}
	if spec.SubtitleRenderer != nil && spec.SubtitleText != "" {
		return true
	}
	return false
}

// BuildClip assembles the ffmpeg argument list for one clip, implementing
// spec.md §4.5 steps 1-10 in order. outputPath is the destination file;
// ffmpegBin is the transcoder binary name/path.
func BuildClip(prober *capability.Prober, reg *pluginregistry.Registry, spec ClipSpec, ffmpegBin, outputPath string) ([]string, error) {
	path := SelectPath(prober, ClipOverlayInputs{
		HasAlphaOverlay:   hasAlphaOverlay(spec),
		AllowExperimental: spec.AllowExperimentalAlphaGPU,
	})
	if spec.ForceCPU {
		path = PathCPU
	}
	gpuOverlay := path == PathCUDA

	g := NewGraph()
	ci := addInputs(g, spec)

	// Step 2: background fit (+ fps normalization up front).
	bgChain := BuildBackgroundFit(spec.Background.Layout, spec.Video.Width, spec.Video.Height, spec.Video.FPS, spec.Background.PreScaled, true)
	cur := "bg0"
	g.AddChain(fmt.Sprintf("%s%s%s", StreamRef(ci.bgIdx, "v"), bgChain, Label(cur)))

	// Step 3: background effects.
	if len(spec.BackgroundEffects) > 0 {
		frags := reg.ResolveOverlayEffects(spec.BackgroundEffects, spec.Duration)
		for i, frag := range frags {
			next := fmt.Sprintf("bg_eff%d", i)
			g.AddChain(Label(cur) + frag + Label(next))
			cur = next
		}
	}

	// Insert media overlay (listed among C5's inputs; composited like any
	// other RGBA overlay before characters).
	if spec.Insert != nil {
		next := "with_insert"
		cur = BuildInsertOverlay(g, ci.insertIdx, *spec.Insert, cur, next)
	}

	// Static foreground overlays (logos, UI frames).
	for i, fg := range spec.FGOverlays {
		next := fmt.Sprintf("fg%d", i)
		cur = BuildForegroundOverlay(g, lookupFGInput(g, fg), fg, cur, next)
	}

	// Step 4-5: characters + face animation.
	var lastVisibleNumericX, lastVisibleNumericY, lastVisibleDynamicX, lastVisibleDynamicY string
	var lastVisibleDynamic bool
	var lastVisibleIdx = -1
	for i, co := range spec.Characters {
		if !co.Visible {
			continue
		}
		next := fmt.Sprintf("char%d", i)
		cur = buildCharacterChain(g, reg, CharacterInput{Placement: co, InputIdx: ci.charIdx[i]}, cur, spec.Duration, next, gpuOverlay)
		if spec.FaceAnim != nil && co.Name != spec.FaceAnim.TargetName {
			continue
		}

		numX, numY := anchorOffset(co.Anchor, "main_w", "main_h", "overlay_w", "overlay_h", co.Position.X, co.Position.Y)
		dynX, dynY, dyn := buildCharacterPosition(reg, co, spec.Duration)
		lastVisibleNumericX, lastVisibleNumericY = numX, numY
		lastVisibleDynamicX, lastVisibleDynamicY = dynX, dynY
		lastVisibleDynamic = dyn
		lastVisibleIdx = i
	}

	if spec.FaceAnim != nil && lastVisibleIdx >= 0 {
		target := spec.Characters[lastVisibleIdx]
		next := "face"
		cur = buildFaceOverlays(g, spec.FaceAnim, target.ImagePath,
			lastVisibleNumericX, lastVisibleNumericY, lastVisibleDynamicX, lastVisibleDynamicY, lastVisibleDynamic,
			target.EnterEffect, target.EnterDuration, cur, next)
	}

	// Step 6: subtitle overlay (only when the caller wants it burned into
	// this clip rather than deferred to scene-level post-overlay).
	if spec.SubtitleRenderer != nil && spec.SubtitleText != "" {
		next := "subtitled"
		var err error
		cur, _, _, err = BuildSubtitleOverlay(g, reg, spec.SubtitleRenderer, spec.SubtitleText, spec.SubtitleStyle, spec.SubtitleEffects, spec.Duration, cur, next)
		if err != nil {
			return nil, &errs.PipelineError{Phase: "filtergraph", Err: err}
		}
	}

	// Step 7: screen effects.
	cur = BuildScreenEffects(g, reg, spec.ScreenEffects, spec.Duration, cur, "screen")

	// Step 8: format normalization.
	encodeWithCUDA := prober.HwEncoderKind() == capability.EncoderNVENC && gpuOverlay
	cur = BuildFormatNormalization(g, gpuOverlay, encodeWithCUDA, cur, "video_out")

	// Step 9: audio.
	preDurationMs := int(spec.PreDuration * 1000)
	audioLabel := BuildAudioChain(g, spec.Audio, spec.AudioPath != "", insertAudioIdx(spec, ci), preDurationMs, spec.Duration, "audio_out")

	inputArgs := g.Inputs()
	args := make([]string, 0, 32+len(inputArgs))
	args = append(args, ffmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")
	args = append(args, inputArgs...)
	args = append(args, "-filter_complex", g.Render())
	args = append(args, "-map", Label(cur), "-map", Label(audioLabel))
	args = append(args, "-t", strconv.FormatFloat(spec.Duration, 'f', -1, 64))

	hwKind := prober.HwEncoderKind()
	if spec.ForceCPU {
		hwKind = capability.EncoderNone
	}
	args = appendVideoCodec(args, spec.Video, hwKind, false)
	args = appendAudioCodec(args, spec.Audio)
	args = append(args, outputPath)
	return args, nil
}

// insertAudioIdx returns the insert media's audio input index if it
// carries audio, else -1.
func insertAudioIdx(spec ClipSpec, ci clipInputs) int {
	if spec.Insert != nil && spec.Insert.HasAudio {
		return ci.insertIdx
	}
	return -1
}

// lookupFGInput registers fg's image as a new input. Kept as a tiny
// indirection so a future static-overlay cache (spec.md §4.8 step 2) can
// intercept this instead of always adding a fresh input.
func lookupFGInput(g *Graph, fg config.ForegroundOverlay) int {
	return g.AddInput(fg.ImagePath)
}

// knownGPUFailureMarkers are stderr substrings indicating a GPU filter or
// encoder failure worth retrying on CPU, per spec.md §4.5's retry policy.
var knownGPUFailureMarkers = []string{"nvenc", "overlay_cuda", "scale_cuda", "cuda"}

// RunClip executes args via ffmpegBin, retrying once with ForceCPU set if
// the transcoder exits with a known GPU failure signature. prober's
// filter mode is forced to CPU process-wide on that retry, per spec.md
// §4.5's "One retry maximum" policy.
func RunClip(ctx context.Context, prober *capability.Prober, reg *pluginregistry.Registry, spec ClipSpec, ffmpegBin, outputPath string) error {
	args, err := BuildClip(prober, reg, spec, ffmpegBin, outputPath)
	if err != nil {
		return err
	}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err == nil {
		return nil
	}
	if !spec.ForceCPU && isGPUFailure(string(out)) {
		prober.SetFilterMode(capability.FilterModeCPU)
		retrySpec := spec
		retrySpec.ForceCPU = true
		return RunClip(ctx, prober, reg, retrySpec, ffmpegBin, outputPath)
	}
	return &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
}

func isGPUFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range knownGPUFailureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
