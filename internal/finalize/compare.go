package finalize

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/scenecast/scenecast/internal/mediaprobe"
)

// clipParams is the subset of a probed clip's parameters that must match
// across every scene for a stream-copy concat to be valid.
type clipParams struct {
	width, height int
	fps           float64
	pixFmt        string
	videoCodec    string
	audioCodec    string
	sampleRate    int
	channels      int
}

func (p clipParams) equal(o clipParams) bool {
	return p.width == o.width && p.height == o.height && fpsEqual(p.fps, o.fps) &&
		p.pixFmt == o.pixFmt && p.videoCodec == o.videoCodec &&
		p.audioCodec == o.audioCodec && p.sampleRate == o.sampleRate && p.channels == o.channels
}

func fpsEqual(a, b float64) bool {
	const eps = 0.01
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}

func probeParams(ctx context.Context, probe *mediaprobe.Cache, path string) (clipParams, error) {
	info, err := probe.Get(ctx, path)
	if err != nil {
		return clipParams{}, fmt.Errorf("finalize: probe %s: %w", path, err)
	}
	var p clipParams
	if info.Video != nil {
		p.width = info.Video.Width
		p.height = info.Video.Height
		p.fps = parseFrameRate(info.Video.AvgFrameRate)
		p.pixFmt = info.Video.PixFmt
		p.videoCodec = info.Video.Codec
	}
	if info.Audio != nil {
		p.audioCodec = info.Audio.Codec
		p.sampleRate = info.Audio.SampleRate
		p.channels = info.Audio.Channels
	}
	return p, nil
}

// parseFrameRate parses ffprobe's "num/den" avg_frame_rate form into a
// decimal fps, returning 0 if it can't be parsed (never matches, forcing
// the safe re-encode path rather than risking a bad stream-copy).
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// paramsMatch reports whether every clip shares identical encode
// parameters, per spec.md §4.9's "compare resolution, fps, pix_fmt, codec,
// audio params" rule. A single-clip run trivially matches.
func paramsMatch(ctx context.Context, probe *mediaprobe.Cache, clips []SceneClip) (bool, error) {
	if len(clips) <= 1 {
		return true, nil
	}
	first, err := probeParams(ctx, probe, clips[0].Path)
	if err != nil {
		return false, err
	}
	for _, c := range clips[1:] {
		p, err := probeParams(ctx, probe, c.Path)
		if err != nil {
			return false, err
		}
		if !p.equal(first) {
			return false, nil
		}
	}
	return true, nil
}
