package videophase

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/scenecast/scenecast/internal/errs"
)

// concatClips joins paths (in order) via ffmpeg's concat demuxer with
// stream-copy, per spec.md §4.8 step 7. Every input clip was produced by
// the same filtergraph.BuildClip call shape (same video/audio params), so
// a stream-copy concat is always valid here.
func (r *Renderer) concatClips(ctx context.Context, paths []string, outPath string) error {
	listPath := outPath + ".concat.txt"
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("videophase: write concat list: %w", err)
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			f.Close()
			return fmt.Errorf("videophase: resolve clip path %s: %w", p, err)
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapeConcatPath(abs)); err != nil {
			f.Close()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{r.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
	}
	return nil
}

// escapeConcatPath escapes single quotes for the concat demuxer's list
// file grammar, where each path is itself single-quoted.
func escapeConcatPath(p string) string {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, p[i])
	}
	return string(out)
}
