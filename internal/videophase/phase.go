package videophase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/filtergraph"
	"github.com/scenecast/scenecast/internal/sceneplanner"
)

// RenderScene implements the full Scene Planner + Video Phase (C8) for
// one scene: pad-duration application, static-overlay/common-insert
// detection, scene-base/run-base pre-rendering, bounded-concurrency
// per-line rendering, scene-level subtitle post-overlay, and
// concatenation. layout is applied to every background of the scene,
// including per-line background overrides; the orchestrator passes
// cfg.Background unchanged for every scene (no per-scene or per-line
// layout merge).
func (r *Renderer) RenderScene(ctx context.Context, scene config.Scene, lineData []audiophase.LineData, layout config.BackgroundLayout) (SceneResult, error) {
	if len(lineData) != len(scene.Lines) {
		return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: fmt.Errorf("line_data_map length %d does not match scene %q line count %d", len(lineData), scene.ID, len(scene.Lines))}
	}

	plan := sceneplanner.BuildPlan(scene, r.Defaults)
	works := r.buildLineWork(scene, lineData, plan)

	totalDuration := 0.0
	for _, w := range works {
		totalDuration += w.duration
	}

	bgIsVideo := r.isVideoBackground(ctx, scene.Background)
	needsSceneBase := plan.NeedsSceneBase(scene, bgIsVideo, r.Defaults.SceneBaseThreshold)

	normalizedInsert, err := r.normalizeCommonInsert(ctx, plan.CommonInsert)
	if err != nil {
		return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
	}

	rawBG := filtergraph.BackgroundInput{Path: scene.Background, Layout: layout}

	var sceneBase *bakedBase
	var runBases = make(map[int]*bakedBase) // line index -> the run-base covering it
	var runLocalStart = make(map[int]float64)

	switch {
	case needsSceneBase:
		sceneBase, err = r.renderSceneBase(ctx, rawBG, totalDuration, plan, scene.FGOverlays)
		if err != nil {
			return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
		}
	case len(plan.Runs) > 0:
		for _, run := range plan.Runs {
			base, err := r.renderRunBase(ctx, rawBG, run, works)
			if err != nil {
				return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
			}
			local := 0.0
			for i := run.Start; i < run.End; i++ {
				runBases[i] = base
				runLocalStart[i] = local
				local += works[i].duration
			}
		}
	}

	var normBase *bakedBase
	if sceneBase == nil && len(runBases) == 0 && bgIsVideo {
		normBase, err = r.renderBase(ctx, rawBG, totalDuration, nil, nil, false, "bg_norm")
		if err != nil {
			return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
		}
	}

	clipWorkers := r.tuner.clipWorkers(r.Defaults.ClipWorkers)
	outputs := newClipOutputs(len(works))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(clipWorkers))

	for i := range works {
		i := i
		w := works[i]
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			var bg filtergraph.BackgroundInput
			if w.line.Background != nil && *w.line.Background != scene.Background {
				bg = filtergraph.BackgroundInput{Path: *w.line.Background, Layout: layout}
			} else {
				bg = chooseBackground(scene.Background, layout, sceneBase, runBases[i], normBase, w.startAt, runLocalStart[i])
			}

			start := time.Now()
			path, err := r.renderLineWork(gctx, w, bg, baseFor(sceneBase, runBases, i), scene.FGOverlays, normalizedInsert)
			elapsed := time.Since(start)
			if err != nil {
				return &errs.PipelineError{Phase: "videophase", Err: fmt.Errorf("line %d: %w", i, err)}
			}
			outputs.set(i, path)

			if w.line.Kind == config.LineTalk {
				r.tuner.record(isCPUOverlayLine(w.line), elapsed)
				if r.Timeline != nil {
					r.Timeline.Append(w.startAt, w.duration, "line", w.data.Text)
				}
			} else if r.Timeline != nil {
				r.Timeline.Append(w.startAt, w.duration, "wait", "")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SceneResult{}, err
	}

	key := cache.Key{"kind": "scene_concat", "scene": scene.ID, "clips": outputs.paths}
	concatResult, err := r.Cache.GetOrCreate(key, fmt.Sprintf("scene_concat_%s", scene.ID), "mp4", func(out string) (string, error) {
		if err := r.concatClips(ctx, outputs.paths, out); err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
	}

	cues := collectSubtitleCues(works)
	finalKey := cache.Key{"kind": "scene_output", "scene": scene.ID, "concat": concatResult, "cues": cues, "subtitle_style": r.Subtitle}
	final, err := r.Cache.GetOrCreate(finalKey, fmt.Sprintf("scene_output_%s", scene.ID), "mp4", func(out string) (string, error) {
		return r.overlaySubtitles(ctx, concatResult, cues, out)
	})
	if err != nil {
		return SceneResult{}, &errs.PipelineError{Phase: "videophase", Err: err}
	}

	return SceneResult{SceneID: scene.ID, Path: final, Duration: totalDuration}, nil
}

// baseFor returns whichever base (scene-wide or run-local) covers line i.
func baseFor(sceneBase *bakedBase, runBases map[int]*bakedBase, i int) *bakedBase {
	if sceneBase != nil {
		return sceneBase
	}
	return runBases[i]
}

// isCPUOverlayLine implements spec.md §4.8 Auto-tune's "implied by
// presence of subtitle / characters / image insert".
func isCPUOverlayLine(line config.Line) bool {
	if line.Subtitle != nil && *line.Subtitle != "" {
		return true
	}
	if line.Insert != nil {
		return true
	}
	for _, co := range line.Characters {
		if co.Visible {
			return true
		}
	}
	return false
}

// buildLineWork applies step 1's pad durations and computes each line's
// cumulative scene-relative start time.
func (r *Renderer) buildLineWork(scene config.Scene, lineData []audiophase.LineData, plan sceneplanner.Plan) []lineWork {
	works := make([]lineWork, len(scene.Lines))
	cursor := 0.0
	for i, line := range scene.Lines {
		data := lineData[i]
		pad := plan.Pads[i]
		data.PreDuration = pad.Pre
		data.PostDuration = pad.Post
		duration := data.Duration + pad.Pre + pad.Post
		works[i] = lineWork{index: i, line: line, data: data, startAt: cursor, duration: duration}
		cursor += duration
	}
	return works
}
