package videophase

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/errs"
)

// isVideoBackground reports whether path is a moving-image background
// rather than a still image, by probing it: ffprobe reports a video
// stream for both, but a still image's container duration is ~0 whereas a
// real video carries a non-trivial one. 100ms is comfortably below any
// real single-frame-extracted duration ffprobe would report for a still.
func (r *Renderer) isVideoBackground(ctx context.Context, path string) bool {
	if r.Probe == nil {
		return false
	}
	info, err := r.Probe.Get(ctx, path)
	if err != nil || info.Video == nil {
		return false
	}
	return info.Format.Duration > 0.1
}

// normalizeCommonInsert implements spec.md §4.8 step 3's "common insert
// videos are instead just pre-normalized once and propagated per-line":
// format+scale the insert to RGBA once, cached, and return a new
// InsertSpec pointing at the normalized asset with Scale reset to 1 so
// per-line overlay chains skip re-scaling.
func (r *Renderer) normalizeCommonInsert(ctx context.Context, ins *config.InsertSpec) (*config.InsertSpec, error) {
	if ins == nil {
		return nil, nil
	}
	if ins.HasAudio {
		// The normalized asset drops audio (qtrle has none); an insert
		// whose audio is mixed in per-line must keep referencing the
		// original file, so normalization is skipped for it.
		return ins, nil
	}
	key := cache.Key{
		"kind":   "insert_normalize",
		"path":   ins.Path,
		"scale":  ins.Scale,
		"ffmpeg": r.Prober.FfmpegVersion(),
	}
	path, err := r.Cache.GetOrCreate(key, "insert_norm", "mov", func(outPath string) (string, error) {
		filter := "format=rgba"
		if ins.Scale > 0 && ins.Scale != 1.0 {
			filter = fmt.Sprintf("%s,scale=iw*%g:ih*%g", filter, ins.Scale, ins.Scale)
		}
		args := []string{r.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
			"-i", ins.Path, "-vf", filter, "-c:v", "qtrle", "-an", outPath}
		out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
		if err != nil {
			return "", &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
		}
		return outPath, nil
	})
	if err != nil {
		return nil, err
	}
	return &config.InsertSpec{Path: path, X: ins.X, Y: ins.Y, Scale: 1.0, HasAudio: ins.HasAudio}, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
