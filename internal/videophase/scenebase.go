package videophase

import (
	"context"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/filtergraph"
	"github.com/scenecast/scenecast/internal/sceneplanner"
)

// bakedBase is one pre-rendered base video (scene-wide or run-local) plus
// what it already contains, so per-line rendering knows what to strip
// from its own overlay set (spec.md §4.8 step 5's "strip already-baked
// static characters and static image inserts").
type bakedBase struct {
	path            string
	duration        float64
	bakedCharacters map[string]bool // CharacterOverlay.Name -> baked
	bakedFGOverlays bool
}

// renderBase renders one background+static-overlay video covering
// [0, duration) of bg (or a sub-range when seek > 0, for a run-base drawn
// from a longer background), baking in staticChars and, when
// includeSceneFG is true, the scene's own static foreground overlays.
func (r *Renderer) renderBase(ctx context.Context, bg filtergraph.BackgroundInput, duration float64,
	staticChars []config.CharacterOverlay, sceneFG []config.ForegroundOverlay, includeSceneFG bool, cacheName string) (*bakedBase, error) {

	fg := sceneFG
	if !includeSceneFG {
		fg = nil
	}

	key := cache.Key{
		"kind":       cacheName,
		"bg_path":    bg.Path,
		"bg_seek":    bg.Seek,
		"bg_layout":  bg.Layout,
		"duration":   duration,
		"characters": staticChars,
		"fg":         fg,
		"video":      r.Video,
		"ffmpeg":     r.Prober.FfmpegVersion(),
		"hw_kind":    string(r.Prober.HwEncoderKind()),
	}

	spec := filtergraph.ClipSpec{
		Background:   bg,
		Characters:   staticChars,
		FGOverlays:   fg,
		Duration:     duration,
		Video:        r.Video,
		Audio:        r.Audio,
	}

	path, err := r.Cache.GetOrCreate(key, cacheName, "mp4", func(outPath string) (string, error) {
		if err := filtergraph.RunClip(ctx, r.Prober, r.Registry, spec, r.FFmpegBin, outPath); err != nil {
			return "", err
		}
		return outPath, nil
	})
	if err != nil {
		return nil, err
	}

	baked := &bakedBase{path: path, duration: duration, bakedFGOverlays: includeSceneFG, bakedCharacters: make(map[string]bool)}
	for _, c := range staticChars {
		baked.bakedCharacters[c.Name] = true
	}
	return baked, nil
}

// renderSceneBase implements spec.md §4.8 step 3: a single base covering
// the whole scene's cumulative duration.
func (r *Renderer) renderSceneBase(ctx context.Context, bgInput filtergraph.BackgroundInput, totalDuration float64,
	plan sceneplanner.Plan, sceneFG []config.ForegroundOverlay) (*bakedBase, error) {
	return r.renderBase(ctx, bgInput, totalDuration, plan.StaticCharacters, sceneFG, true, "scene_base")
}

// renderRunBase implements spec.md §4.8 step 4: a base covering only one
// run's combined duration, drawn from the run's shared signature. run's
// static characters are re-derived from the run's first line rather than
// plan.StaticCharacters, since a run-base exists precisely because no
// scene-wide intersection was found.
func (r *Renderer) renderRunBase(ctx context.Context, bgInput filtergraph.BackgroundInput, run sceneplanner.Run, works []lineWork) (*bakedBase, error) {
	runDuration := 0.0
	for i := run.Start; i < run.End; i++ {
		runDuration += works[i].duration
	}
	staticChars := sceneplanner.FilterStatic(works[run.Start].line.Characters)
	return r.renderBase(ctx, bgInput, runDuration, staticChars, nil, false, "run_base")
}
