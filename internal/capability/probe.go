package capability

import (
	"context"
	"os/exec"
	"strings"
)

// runSilent runs name with args and reports whether it exited zero,
// discarding all output. Generalized from the teacher's check.runSilent.
func runSilent(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// captureOutput runs name with args and returns combined stdout+stderr.
func captureOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// FfmpegVersion returns the transcoder's version string (first line of
// `ffmpeg -version`), memoized for the process lifetime.
func (p *Prober) FfmpegVersion() string {
	return p.ffmpegVersion.get(func() string {
		ctx, cancel := p.ctx()
		defer cancel()
		out, err := p.capture(ctx, p.ffmpegBin, "-version")
		if err != nil {
			p.warnOnce("ffmpeg_version", "ffmpeg -version failed: %v", err)
			return "unknown"
		}
		line := strings.TrimSpace(out)
		if idx := strings.IndexByte(line, '\n'); idx > 0 {
			line = line[:idx]
		}
		return line
	})
}

// encoderProbe pairs a hardware encoder kind with the transcoder encoder
// name used to list and smoke-test it.
type encoderProbe struct {
	kind    EncoderKind
	encoder string
	args    func(encoder string) []string
}

// hwEncoderCandidates is the probe order: first encoder that both appears
// in `-encoders` and survives a smoke encode wins.
var hwEncoderCandidates = []encoderProbe{
	{EncoderNVENC, "hevc_nvenc", genericEncodeArgs},
	{EncoderQSV, "hevc_qsv", genericEncodeArgs},
	{EncoderVAAPI, "hevc_vaapi", vaapiEncodeArgs},
	{EncoderAMF, "hevc_amf", genericEncodeArgs},
	{EncoderVideoToolbox, "hevc_videotoolbox", genericEncodeArgs},
}

func genericEncodeArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", encoder,
		"-f", "null", "-",
	}
}

func vaapiEncodeArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-init_hw_device", "vaapi=va:/dev/dri/renderD128",
		"-filter_hw_device", "va",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-vf", "format=nv12,hwupload",
		"-c:v", encoder,
		"-f", "null", "-",
	}
}

// HwEncoderKind reports which hardware encoder family, if any, the
// transcoder can actually use: present in `-encoders` AND a smoke encode
// succeeds. Memoized for the process lifetime.
func (p *Prober) HwEncoderKind() EncoderKind {
	return p.encoderKind.get(func() EncoderKind {
		ctx, cancel := p.ctx()
		listing, err := p.capture(ctx, p.ffmpegBin, "-hide_banner", "-encoders")
		cancel()
		if err != nil {
			p.warnOnce("hw_encoder_kind", "ffmpeg -encoders failed: %v", err)
			return EncoderNone
		}
		for _, cand := range hwEncoderCandidates {
			if !strings.Contains(listing, cand.encoder) {
				continue
			}
			ctx, cancel := p.ctx()
			ok := p.run(ctx, p.ffmpegBin, cand.args(cand.encoder)...)
			cancel()
			if ok {
				return cand.kind
			}
			p.warnOnce("hw_encoder_kind:"+string(cand.kind),
				"%s listed but smoke encode failed", cand.encoder)
		}
		return EncoderNone
	})
}

// filterProbe pairs the filters required for a capability with the smoke
// test command that proves they actually run end to end.
type filterProbe struct {
	name    string
	filters []string
	args    []string
}

var cudaFilterProbe = filterProbe{
	name:    "has_cuda_filters",
	filters: []string{"scale_cuda", "overlay_cuda"},
	args: []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-init_hw_device", "cuda=cu", "-filter_hw_device", "cu",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-f", "lavfi", "-i", "color=white:s=64x64:d=0.1",
		"-filter_complex",
		"[0:v]hwupload_cuda,scale_cuda=128:128[bg];" +
			"[1:v]hwupload_cuda[fg];[bg][fg]overlay_cuda=0:0",
		"-f", "null", "-",
	},
}

var gpuScaleFilterProbe = filterProbe{
	name:    "has_gpu_scale_filters",
	filters: []string{"scale_npp"},
	args: []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-init_hw_device", "cuda=cu", "-filter_hw_device", "cu",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-vf", "hwupload_cuda,scale_npp=128:128",
		"-f", "null", "-",
	},
}

var openCLFilterProbe = filterProbe{
	name:    "has_opencl_filters",
	filters: []string{"convert_to_opencl", "overlay_opencl"},
	args: []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-init_hw_device", "opencl=ocl",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-vf", "convert_to_opencl,convert_from_opencl",
		"-f", "null", "-",
	},
}

// checkFilters reports true only if every name in fp.filters is listed by
// `-filters` AND the smoke-test command exits zero.
func (p *Prober) checkFilters(fp filterProbe) bool {
	ctx, cancel := p.ctx()
	listing, err := p.capture(ctx, p.ffmpegBin, "-hide_banner", "-filters")
	cancel()
	if err != nil {
		p.warnOnce(fp.name, "ffmpeg -filters failed: %v", err)
		return false
	}
	for _, f := range fp.filters {
		if !strings.Contains(listing, f) {
			return false
		}
	}
	ctx, cancel = p.ctx()
	ok := p.run(ctx, p.ffmpegBin, fp.args...)
	cancel()
	if !ok {
		p.warnOnce(fp.name, "%s listed but smoke test failed", fp.name)
	}
	return ok
}

// HasCUDAFilters reports whether scale_cuda+overlay_cuda are listed and
// actually compose two frames successfully.
func (p *Prober) HasCUDAFilters() bool {
	return p.cudaFilters.get(func() bool { return p.checkFilters(cudaFilterProbe) })
}

// HasGPUScaleFilters reports whether a GPU scale filter (scale_npp family)
// is listed and smoke-tests clean.
func (p *Prober) HasGPUScaleFilters() bool {
	return p.gpuScaleFilters.get(func() bool { return p.checkFilters(gpuScaleFilterProbe) })
}

// HasOpenCLFilters reports whether OpenCL upload/download filters are
// listed and smoke-test clean.
func (p *Prober) HasOpenCLFilters() bool {
	return p.openCLFilters.get(func() bool { return p.checkFilters(openCLFilterProbe) })
}

// PreferredCUDAScaleFilter returns "scale_cuda" if it smoke-tests clean,
// else "scale_npp" if that does, else "scale_cuda" as the conventional
// default (callers fall back to CPU scaling if neither actually works).
func (p *Prober) PreferredCUDAScaleFilter() string {
	return p.preferredCUDAScale.get(func() string {
		if p.HasCUDAFilters() {
			return "scale_cuda"
		}
		if p.HasGPUScaleFilters() {
			return "scale_npp"
		}
		return "scale_cuda"
	})
}
