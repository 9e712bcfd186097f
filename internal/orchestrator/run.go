package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/check"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/display"
	"github.com/scenecast/scenecast/internal/errs"
	"github.com/scenecast/scenecast/internal/finalize"
	"github.com/scenecast/scenecast/internal/mediaprobe"
	"github.com/scenecast/scenecast/internal/pluginregistry"
	"github.com/scenecast/scenecast/internal/subtitlerender"
	"github.com/scenecast/scenecast/internal/timeline"
	"github.com/scenecast/scenecast/internal/ttsclient"
	"github.com/scenecast/scenecast/internal/videophase"
)

const ttsRequestTimeout = 60 * time.Second

// Orchestrator wires the three phases together and emits reports for one
// run. Construct with New and call Run once.
type Orchestrator struct {
	cfg *config.Config
	log Logger
}

// New returns an Orchestrator for cfg, which must already be loaded and
// validated (internal/config.Load).
func New(cfg *config.Config, log Logger) *Orchestrator {
	if log == nil {
		log = nopLogger{}
	}
	return &Orchestrator{cfg: cfg, log: log}
}

// Run executes the full pipeline: Audio Phase, Scene Planner + Video
// Phase, Finalize Phase, then writes the requested reports alongside the
// output MP4. It implements spec.md §4.10.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	cfg := o.cfg
	runID := newRunID()

	if err := check.Deps(cfg); err != nil {
		return Result{}, &errs.DependencyError{Dep: "startup check", Err: err}
	}

	cacheMgr, err := cache.New(cfg.CacheDir, cfg.Defaults.CacheTTLHours, cfg.Defaults.CacheMaxSizeMB, cfg.NoCache, cfg.CacheRefresh)
	if err != nil {
		return Result{}, &errs.PipelineError{Phase: "orchestrator", Err: fmt.Errorf("init cache: %w", err)}
	}

	probeCache, err := mediaprobe.NewCache(256)
	if err != nil {
		return Result{}, &errs.PipelineError{Phase: "orchestrator", Err: fmt.Errorf("init probe cache: %w", err)}
	}

	tts := ttsclient.New(cfg.Defaults.TTSURL, ttsRequestTimeout)
	audioPhase := audiophase.New(tts, cacheMgr, probeCache, o.log, "ffmpeg", cfg.Defaults.TTSURL, cfg.Audio, cfg.Defaults)

	reg := pluginregistry.New(o.log)
	pluginregistry.RegisterBuiltins(reg)
	if len(cfg.Plugins.Roots) > 0 {
		specs, discoverErrs := pluginregistry.Discover(cfg.Plugins.Roots, cfg.Plugins.Allow, cfg.Plugins.Deny, pluginregistry.SourceUser)
		for _, e := range discoverErrs {
			o.log.Warn("plugin discovery: %v", e)
		}
		o.log.Info("discovered %d plugin manifest(s)", len(specs))
	}

	prober := capability.New("ffmpeg", o.log)
	subRenderer := subtitlerender.NewRenderer(cacheMgr, cfg.Video.Width)
	tl := timeline.New()

	renderer := videophase.NewRenderer("ffmpeg", prober, cacheMgr, reg, cfg.Video, cfg.Audio, cfg.Defaults, cfg.Subtitle, subRenderer, tl, o.log, cfg.CacheDir)
	finalizer := finalize.NewFinalizer("ffmpeg", probeCache, cfg.Video, cfg.Audio, cfg.FinalCopyOnly, o.log)

	clips, usage, err := o.renderScenes(ctx, audioPhase, renderer, tl)
	if err != nil {
		return Result{}, err
	}

	o.log.Info("finalizing %d scene clip(s)", len(clips))
	finalResult, err := finalizer.Finalize(ctx, cfg.Scenes, clips, cfg.BGM, cfg.OutputPath)
	if err != nil {
		return Result{}, err
	}
	o.log.Success("wrote %s (%.2fs, %s, %s)", finalResult.Path, finalResult.Duration, copyOrEncode(finalResult.Copied), outputSizeLabel(finalResult.Path))

	result := Result{
		OutputPath:  finalResult.Path,
		Duration:    finalResult.Duration,
		ScenesMuxed: len(clips),
		VoiceUsage:  usage,
	}

	resolver := timeline.NewPathResolver()
	if err := o.writeReports(runID, resolver, tl.Entries(), usage, &result); err != nil {
		return Result{}, err
	}

	return result, nil
}

// renderScenes runs the Audio Phase then the Video Phase for every scene
// in order, bridging audiophase.ProcessScene's line-id-keyed map into the
// ordered []audiophase.LineData slice videophase.RenderScene expects.
func (o *Orchestrator) renderScenes(ctx context.Context, audioPhase *audiophase.Phase, renderer *videophase.Renderer, tl *timeline.Timeline) ([]finalize.SceneClip, []audiophase.VoicevoxUsage, error) {
	cfg := o.cfg
	clips := make([]finalize.SceneClip, 0, len(cfg.Scenes))
	var allUsage []audiophase.VoicevoxUsage
	currentTime := 0.0

	for si := range cfg.Scenes {
		scene := &cfg.Scenes[si]
		o.log.Info("scene %q: audio phase (%d line(s))", scene.ID, len(scene.Lines))

		lineDataMap, usage, err := audioPhase.ProcessScene(ctx, scene, currentTime, tl)
		if err != nil {
			return nil, nil, err
		}
		allUsage = append(allUsage, usage...)

		ordered := make([]audiophase.LineData, len(scene.Lines))
		for i := range scene.Lines {
			lineID := fmt.Sprintf("%s_%d", scene.ID, i+1)
			ld, ok := lineDataMap[lineID]
			if !ok {
				return nil, nil, &errs.PipelineError{Phase: "orchestrator", Err: fmt.Errorf("scene %q: missing audio-phase output for line %s", scene.ID, lineID)}
			}
			ordered[i] = *ld
		}

		o.log.Info("scene %q: video phase", scene.ID)
		sceneResult, err := renderer.RenderScene(ctx, *scene, ordered, cfg.Background)
		if err != nil {
			return nil, nil, err
		}
		clips = append(clips, finalize.SceneClip{SceneID: sceneResult.SceneID, Path: sceneResult.Path, Duration: sceneResult.Duration})
		currentTime += sceneResult.Duration
	}
	return clips, allUsage, nil
}

// writeReports emits the timeline, subtitle, and voice-usage reports
// requested by cfg, deriving each report's path from the output MP4's
// path and passing each through resolver. Run creates a new resolver for
// every run, so it sees only this run's own paths: reports from an earlier
// run with the same output path are overwritten, not suffixed.
func (o *Orchestrator) writeReports(runID string, resolver *timeline.PathResolver, entries []timeline.Entry, usage []audiophase.VoicevoxUsage, result *Result) error {
	cfg := o.cfg
	base := outputStem(cfg.OutputPath)

	if !cfg.NoTimeline {
		if cfg.Timeline == config.TimelineMD || cfg.Timeline == config.TimelineBoth {
			path := resolver.Resolve(runID, base+"_timeline.md")
			if err := writeFile(path, func(w *bytes.Buffer) error { return timeline.WriteMarkdown(w, entries) }); err != nil {
				return &errs.PipelineError{Phase: "orchestrator", Err: err}
			}
			result.TimelinePaths = append(result.TimelinePaths, path)
		}
		if cfg.Timeline == config.TimelineCSV || cfg.Timeline == config.TimelineBoth {
			path := resolver.Resolve(runID, base+"_timeline.csv")
			if err := writeFile(path, func(w *bytes.Buffer) error { return timeline.WriteCSV(w, entries) }); err != nil {
				return &errs.PipelineError{Phase: "orchestrator", Err: err}
			}
			result.TimelinePaths = append(result.TimelinePaths, path)
		}
	}

	if !cfg.NoSubtitleFile {
		if cfg.SubtitleFile == config.SubtitleFileSRT || cfg.SubtitleFile == config.SubtitleFileBoth {
			path := resolver.Resolve(runID, base+".srt")
			if err := writeFile(path, func(w *bytes.Buffer) error { return timeline.WriteSRT(w, entries) }); err != nil {
				return &errs.PipelineError{Phase: "orchestrator", Err: err}
			}
			result.SubtitlePaths = append(result.SubtitlePaths, path)
		}
		if cfg.SubtitleFile == config.SubtitleFileASS || cfg.SubtitleFile == config.SubtitleFileBoth {
			path := resolver.Resolve(runID, base+".ass")
			if err := writeFile(path, func(w *bytes.Buffer) error { return timeline.WriteASS(w, entries) }); err != nil {
				return &errs.PipelineError{Phase: "orchestrator", Err: err}
			}
			result.SubtitlePaths = append(result.SubtitlePaths, path)
		}
	}

	voicePath := resolver.Resolve(runID, base+"_voice_usage.md")
	if err := writeFile(voicePath, func(w *bytes.Buffer) error { return writeVoiceUsageReport(w, usage) }); err != nil {
		return &errs.PipelineError{Phase: "orchestrator", Err: err}
	}
	result.VoiceReport = voicePath

	return nil
}

func writeFile(path string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// outputStem strips OutputPath's extension, the base every report path is
// derived from.
func outputStem(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext)
}

func copyOrEncode(copied bool) string {
	if copied {
		return "stream-copied"
	}
	return "re-encoded"
}

// outputSizeLabel reports the final MP4's size for the success log, in
// the teacher's display.FormatBytes units; falls back to "unknown size"
// if the file can't be stat'd (should not happen, but this is a log line
// rather than the run's success signal, so it never fails the run).
func outputSizeLabel(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return display.FormatBytes(fi.Size())
}
