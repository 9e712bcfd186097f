package finalize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/filtergraph"
)

// concatCopy joins clips via the concat demuxer with stream-copy, the same
// approach as internal/videophase.concatClips, used here only once every
// clip's parameters have already been confirmed to match.
func (f *Finalizer) concatCopy(ctx context.Context, clips []SceneClip, outPath string) error {
	listPath := outPath + ".concat.txt"
	lf, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("finalize: write concat list: %w", err)
	}
	for _, c := range clips {
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			lf.Close()
			return fmt.Errorf("finalize: resolve clip path %s: %w", c.Path, err)
		}
		if _, err := fmt.Fprintf(lf, "file '%s'\n", escapeConcatPath(abs)); err != nil {
			lf.Close()
			return err
		}
	}
	if err := lf.Close(); err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{f.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
	}
	return nil
}

// concatReencode joins clips whose parameters diverge via the concat
// filter (not the concat demuxer, which requires matching parameters),
// re-encoding the result to f.Video/f.Audio.
func (f *Finalizer) concatReencode(ctx context.Context, clips []SceneClip, outPath string) error {
	g := filtergraph.NewGraph()
	var vRefs, aRefs string
	for _, c := range clips {
		idx := g.AddInput(c.Path)
		vRefs += filtergraph.StreamRef(idx, "v")
		aRefs += filtergraph.StreamRef(idx, "a")
	}
	n := len(clips)
	g.AddChain(fmt.Sprintf("%s%sconcat=n=%d:v=1:a=1%s%s", vRefs, aRefs, n, filtergraph.Label("ccv"), filtergraph.Label("cca")))

	args := []string{f.FFmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error"}
	args = append(args, g.Inputs()...)
	args = append(args, "-filter_complex", g.Render())
	args = append(args, "-map", filtergraph.Label("ccv"), "-map", filtergraph.Label("cca"))
	args = append(args,
		"-c:v", f.Video.Codec, "-crf", strconv.Itoa(f.Video.CRF), "-pix_fmt", f.Video.PixFmt,
		"-r", strconv.Itoa(f.Video.FPS), "-s", fmt.Sprintf("%dx%d", f.Video.Width, f.Video.Height),
		"-c:a", f.Audio.Codec, "-b:a", f.Audio.Bitrate, "-ar", strconv.Itoa(f.Audio.SampleRate), "-ac", strconv.Itoa(f.Audio.Channels),
		outPath)

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return &errs.TranscoderFailure{Args: args, StderrTail: tail(string(out), 2000), Err: err}
	}
	return nil
}

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

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
