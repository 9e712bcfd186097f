package filtergraph

import (
	"os"
	"strconv"

	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/config"
)

// appendVideoCodec adds the codec-specific encode arguments for the video
// stream, choosing a hardware encoder when hwKind names one, otherwise
// falling back to the configured software codec. Grounded directly on the
// teacher's internal/ffmpeg/builder.go appendVideoCodec shape (one
// switch-case per encoder family, flat []string append).
func appendVideoCodec(args []string, v config.VideoParams, hwKind capability.EncoderKind, nvencFast bool) []string {
	switch hwKind {
	case capability.EncoderNVENC:
		preset := "p5"
		if nvencFast || os.Getenv("NVENC_FAST") != "" {
			preset = "p1"
		}
		args = append(args,
			"-c:v", "hevc_nvenc",
			"-preset", preset,
			"-cq", strconv.Itoa(v.CQ),
			"-pix_fmt", v.PixFmt,
			"-profile:v", v.Profile,
		)
	case capability.EncoderQSV:
		args = append(args,
			"-c:v", "hevc_qsv",
			"-global_quality", strconv.Itoa(v.CQ),
			"-pix_fmt", v.PixFmt,
		)
	case capability.EncoderVAAPI:
		args = append(args,
			"-c:v", "hevc_vaapi",
			"-qp", strconv.Itoa(v.CQ),
			"-profile:v", v.Profile,
		)
	case capability.EncoderVideoToolbox:
		args = append(args,
			"-c:v", "hevc_videotoolbox",
			"-q:v", strconv.Itoa(v.CQ),
		)
	default:
		args = append(args,
			"-c:v", v.Codec,
			"-crf", strconv.Itoa(v.CRF),
			"-pix_fmt", v.PixFmt,
			"-profile:v", v.Profile,
			"-level", v.Level,
		)
		if v.Bitrate != "" {
			args = append(args, "-b:v", v.Bitrate)
		}
	}
	return args
}

// appendAudioCodec adds the audio encode arguments, per a.Codec/Bitrate.
func appendAudioCodec(args []string, a config.AudioParams) []string {
	return append(args,
		"-c:a", a.Codec,
		"-ar", strconv.Itoa(a.SampleRate),
		"-ac", strconv.Itoa(a.Channels),
		"-b:a", a.Bitrate,
	)
}
