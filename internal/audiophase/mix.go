package audiophase

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// track is one input to the mixer: a voice layer or a sound effect,
// reduced to the parameters that affect the mixed output.
type track struct {
	Path    string
	Volume  float64
	DelayMs int
	Loop    bool
}

// buildMixArgs assembles the ffmpeg invocation that mixes tracks into a
// single output file, grounded on the teacher's internal/ffmpeg/builder.go
// style: append into a flat []string, one helper concern at a time,
// rather than building a template string.
func buildMixArgs(ffmpegBin string, tracks []track, outPath string) []string {
	args := make([]string, 0, 8+4*len(tracks))
	args = append(args, ffmpegBin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	for _, tr := range tracks {
		if tr.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args, "-i", tr.Path)
	}

	labels := make([]string, len(tracks))
	stages := make([]string, len(tracks))
	for i, tr := range tracks {
		labels[i] = fmt.Sprintf("a%d", i)
		stages[i] = fmt.Sprintf("[%d:a]volume=%g,adelay=%d|%d[%s]", i, tr.Volume, tr.DelayMs, tr.DelayMs, labels[i])
	}
	var refs strings.Builder
	for _, l := range labels {
		refs.WriteString("[" + l + "]")
	}
	mixStage := fmt.Sprintf("%samix=inputs=%d:duration=longest:dropout_transition=0[mixout]", refs.String(), len(tracks))

	filter := strings.Join(append(stages, mixStage), ";")
	args = append(args, "-filter_complex", filter, "-map", "[mixout]", outPath)
	return args
}

// runMix invokes ffmpeg to mix tracks into outPath. tracks must contain at
// least two entries; mixing a single track is a pointless re-encode and
// callers should short-circuit to using that track's path directly.
func runMix(ctx context.Context, ffmpegBin string, tracks []track, outPath string) error {
	args := buildMixArgs(ffmpegBin, tracks, outPath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mix audio tracks: %w: %s", err, string(out))
	}
	return nil
}
