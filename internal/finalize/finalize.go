package finalize

import (
	"context"
	"fmt"
	"os"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
)

// Result is the Finalize Phase's output.
type Result struct {
	Path     string
	Copied   bool // true if concatenation was a stream-copy, false if re-encoded
	HasBGM   bool
	Duration float64
}

// Finalize implements spec.md §4.9: concatenate clips (stream-copy if every
// scene's encode parameters match, else re-encode via the concat filter,
// failing hard if f.FinalCopyOnly demanded the cheap path), then optionally
// mix in BGM. scenes and clips must be the same length and in scene order.
func (f *Finalizer) Finalize(ctx context.Context, scenes []config.Scene, clips []SceneClip, bgm *config.BGMConfig, outPath string) (Result, error) {
	if len(clips) == 0 {
		return Result{}, &errs.PipelineError{Phase: "finalize", Err: fmt.Errorf("no scene clips to finalize")}
	}

	totalDuration := 0.0
	for _, c := range clips {
		totalDuration += c.Duration
	}

	match, err := paramsMatch(ctx, f.Probe, clips)
	if err != nil {
		return Result{}, &errs.PipelineError{Phase: "finalize", Err: err}
	}
	if !match && f.FinalCopyOnly {
		return Result{}, &errs.PipelineError{Phase: "finalize", Err: fmt.Errorf("scene clips have mismatched parameters and --final-copy-only was requested")}
	}

	needsBGM := len(buildBGMSegments(scenes, clips, bgm)) > 0
	concatTarget := outPath
	if needsBGM {
		concatTarget = outPath + ".concat.mp4"
	}

	if match {
		if err := f.concatCopy(ctx, clips, concatTarget); err != nil {
			return Result{}, &errs.PipelineError{Phase: "finalize", Err: err}
		}
	} else {
		f.Log.Warn("finalize: scene clips have mismatched parameters, re-encoding concat")
		if err := f.concatReencode(ctx, clips, concatTarget); err != nil {
			return Result{}, &errs.PipelineError{Phase: "finalize", Err: err}
		}
	}

	if !needsBGM {
		return Result{Path: outPath, Copied: match, HasBGM: false, Duration: totalDuration}, nil
	}

	final, err := f.mixBGM(ctx, concatTarget, scenes, clips, bgm, totalDuration, outPath)
	if err != nil {
		return Result{}, &errs.PipelineError{Phase: "finalize", Err: err}
	}
	os.Remove(concatTarget)

	return Result{Path: final, Copied: match, HasBGM: true, Duration: totalDuration}, nil
}
