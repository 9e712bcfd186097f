// Package check provides startup diagnostics: ffmpeg/ffprobe presence and
// version, and TTS engine reachability. It runs once before the pipeline
// starts so a misconfigured environment fails fast with a clear message
// instead of partway through rendering.
package check

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/scenecast/scenecast/internal/config"
)

// Sentinel errors returned by Deps when a required tool or service is
// missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrTTSUnreachable  = errors.New("TTS engine did not respond")
)

// Logger is the minimal logging interface needed by Run. Defined here
// (rather than importing the logging package) so check stays
// dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Run prints availability of ffmpeg, ffprobe, and the TTS engine. This is
// informational only — it does not stop on failure; callers that need a
// hard gate should call Deps instead.
func Run(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")
	checkFfmpeg(log)
	checkFfprobe(log)
	checkTTS(cfg, log)
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return
	}
	out, err := exec.Command("ffmpeg", "-version").Output()
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return
	}
	log.Success("ffmpeg: %s", firstLine(out))
}

// checkFfprobe verifies ffprobe is on PATH and logs its version string.
func checkFfprobe(log Logger) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		log.Error("ffprobe not found")
		return
	}
	out, err := exec.Command("ffprobe", "-version").Output()
	if err != nil {
		log.Warn("ffprobe found but -version failed: %v", err)
		return
	}
	log.Success("ffprobe: %s", firstLine(out))
}

// checkTTS makes a short-timeout GET against the configured TTS engine's
// base URL to confirm something is listening.
func checkTTS(cfg *config.Config, log Logger) {
	url := cfg.Defaults.TTSURL
	if url == "" {
		log.Warn("no tts_url configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("tts engine check: %v", err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Error("tts engine at %s unreachable: %v", url, err)
		return
	}
	resp.Body.Close()
	log.Success("tts engine reachable at %s (status %d)", url, resp.StatusCode)
}

// Deps is the pre-pipeline hard validation: it verifies that ffmpeg and
// ffprobe are on PATH and that the configured TTS engine responds. Returns
// a sentinel error on failure.
func Deps(cfg *config.Config) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}

	url := cfg.Defaults.TTSURL
	if url == "" {
		return ErrTTSUnreachable
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ErrTTSUnreachable
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ErrTTSUnreachable
	}
	resp.Body.Close()
	return nil
}

// firstLine trims a multi-line command output down to its first line.
func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}
