package videophase

import (
	"context"
	"fmt"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/filtergraph"
)

// chooseBackground implements spec.md §4.8 step 5's background priority:
// scene-base > run-base > pre-normalized background > raw background.
// offset is this line's position within whichever base was chosen (0 for
// the raw-background fallback, which has no shared timeline to seek
// into).
func chooseBackground(rawPath string, rawLayout config.BackgroundLayout, sceneBase *bakedBase, runBase *bakedBase,
	normBase *bakedBase, cumulativeStart, runLocalStart float64) filtergraph.BackgroundInput {
	switch {
	case sceneBase != nil:
		return filtergraph.BackgroundInput{Path: sceneBase.path, Layout: rawLayout, PreScaled: true, Seek: cumulativeStart}
	case runBase != nil:
		return filtergraph.BackgroundInput{Path: runBase.path, Layout: rawLayout, PreScaled: true, Seek: runLocalStart}
	case normBase != nil:
		return filtergraph.BackgroundInput{Path: normBase.path, Layout: rawLayout, PreScaled: true, Seek: cumulativeStart}
	default:
		return filtergraph.BackgroundInput{Path: rawPath, Layout: rawLayout, PreScaled: false}
	}
}

// stripBaked removes characters already composited into base from chars,
// by name, per spec.md §4.8 step 5.
func stripBaked(chars []config.CharacterOverlay, base *bakedBase) []config.CharacterOverlay {
	if base == nil || len(base.bakedCharacters) == 0 {
		return chars
	}
	var out []config.CharacterOverlay
	for _, co := range chars {
		if base.bakedCharacters[co.Name] {
			continue
		}
		out = append(out, co)
	}
	return out
}

// renderLineWork renders one line's clip (talk or wait) into the cache
// and returns its output path. sceneFG is included only when neither base
// already baked it (spec.md §4.8 step 5's stripping applies to foreground
// overlays the same way it applies to characters).
func (r *Renderer) renderLineWork(ctx context.Context, w lineWork, bg filtergraph.BackgroundInput, base *bakedBase,
	sceneFG []config.ForegroundOverlay, commonInsert *config.InsertSpec) (string, error) {

	if w.line.Kind == config.LineWait {
		return r.renderWaitClip(ctx, w, bg)
	}

	chars := stripBaked(w.line.Characters, base)
	fg := w.line.FGOverlays
	if base == nil || !base.bakedFGOverlays {
		fg = append(append([]config.ForegroundOverlay{}, sceneFG...), fg...)
	}

	insert := w.line.Insert
	if insert != nil && commonInsert != nil {
		insert = commonInsert
	}

	spec := filtergraph.ClipSpec{
		Background:        bg,
		BackgroundEffects: w.line.BackgroundEffects,
		Insert:            insert,
		FGOverlays:        fg,
		Characters:        chars,
		FaceAnim:          w.data.FaceAnim,
		ScreenEffects:     w.line.ScreenEffects,
		AudioPath:         w.data.AudioPath,
		Duration:          w.duration,
		PreDuration:       w.data.PreDuration,
		PostDuration:      w.data.PostDuration,
		Video:             r.Video,
		Audio:             r.Audio,
	}

	key := cache.Key{
		"kind":      "line_clip",
		"bg":        bg,
		"audio":     w.data.AudioPath,
		"chars":     chars,
		"insert":    insert,
		"fg":        fg,
		"screen_fx": w.line.ScreenEffects,
		"bg_fx":     w.line.BackgroundEffects,
		"duration":  w.duration,
		"pre":       w.data.PreDuration,
		"post":      w.data.PostDuration,
		"video":     r.Video,
		"audio_p":   r.Audio,
		"ffmpeg":    r.Prober.FfmpegVersion(),
		"hw_kind":   string(r.Prober.HwEncoderKind()),
		"face_meta": faceAnimMetaKey(w.data.FaceAnim),
	}

	return r.Cache.GetOrCreate(key, "line_clip", "mp4", func(outPath string) (string, error) {
		if err := filtergraph.RunClip(ctx, r.Prober, r.Registry, spec, r.FFmpegBin, outPath); err != nil {
			return "", err
		}
		return outPath, nil
	})
}

func (r *Renderer) renderWaitClip(ctx context.Context, w lineWork, bg filtergraph.BackgroundInput) (string, error) {
	spec := filtergraph.ClipSpec{
		Background: bg,
		Duration:   w.duration,
		Video:      r.Video,
		Audio:      r.Audio,
	}
	key := cache.Key{
		"kind":     "wait_clip",
		"bg":       bg,
		"duration": w.duration,
		"video":    r.Video,
		"audio_p":  r.Audio,
		"ffmpeg":   r.Prober.FfmpegVersion(),
	}
	return r.Cache.GetOrCreate(key, "wait_clip", "mp4", func(outPath string) (string, error) {
		if err := filtergraph.RunClip(ctx, r.Prober, r.Registry, spec, r.FFmpegBin, outPath); err != nil {
			return "", err
		}
		return outPath, nil
	})
}

func faceAnimMetaKey(fa *audiophase.FaceAnim) string {
	if fa == nil {
		return ""
	}
	return fmt.Sprintf("%s|%+v|%+v|%+v", fa.TargetName, fa.Meta, fa.Mouth, fa.Eyes)
}
