// Package videophase implements the Scene Planner + Video Phase (C8):
// per-scene pad-duration application, scene-base/run-base pre-rendering,
// bounded-concurrency per-line clip rendering, scene-level subtitle
// post-overlay, clip concatenation, and cross-run auto-tuning of the
// hardware filter path and worker count. It consumes internal/sceneplanner's
// detection and internal/audiophase's per-line synthesis output, and
// drives internal/filtergraph for every actual transcoder invocation.
package videophase

import (
	"sync"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/cache"
	"github.com/scenecast/scenecast/internal/capability"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/filtergraph"
	"github.com/scenecast/scenecast/internal/mediaprobe"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

// Logger is the subset of internal/logging.Logger this package needs.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}

// TimelineSink receives one append-only entry per rendered line, mirroring
// audiophase.TimelineSink's shape (internal/timeline.Timeline implements
// both without an import cycle).
type TimelineSink interface {
	Append(startTime, duration float64, description, text string)
}

// SceneResult is one scene's Video Phase output.
type SceneResult struct {
	SceneID  string
	Path     string
	Duration float64
}

// Renderer holds everything the Video Phase needs across every scene in a
// run: the shared capability prober (whose hw_filter_mode is mutated by
// auto-tune and by RunClip's GPU-failure retry), the artifact cache, the
// plugin registry, and tunable concurrency/profiling state.
type Renderer struct {
	FFmpegBin string
	Prober    *capability.Prober
	Cache     *cache.Manager
	Registry  *pluginregistry.Registry
	Video     config.VideoParams
	Audio     config.AudioParams
	Defaults  config.DefaultsConfig
	Subtitle  config.SubtitleStyle
	Renderer  filtergraph.SubtitleRenderer // external render_subtitle_png collaborator
	Timeline  TimelineSink
	Log       Logger
	CacheDir  string
	Probe     *mediaprobe.Cache

	tuner *autotuner
}

// NewRenderer returns a Renderer ready to process scenes, loading any
// persisted auto-tune hint from cacheDir.
func NewRenderer(ffmpegBin string, prober *capability.Prober, c *cache.Manager, reg *pluginregistry.Registry,
	video config.VideoParams, audio config.AudioParams, defaults config.DefaultsConfig, subtitle config.SubtitleStyle,
	renderer filtergraph.SubtitleRenderer, timeline TimelineSink, log Logger, cacheDir string) *Renderer {
	if log == nil {
		log = nopLogger{}
	}
	r := &Renderer{
		FFmpegBin: ffmpegBin,
		Prober:    prober,
		Cache:     c,
		Registry:  reg,
		Video:     video,
		Audio:     audio,
		Defaults:  defaults,
		Subtitle:  subtitle,
		Renderer:  renderer,
		Timeline:  timeline,
		Log:       log,
		CacheDir:  cacheDir,
	}
	r.tuner = newAutotuner(defaults.ProfileFirstClips, cacheDir, prober, log)
	probeCache, err := mediaprobe.NewCache(128)
	if err != nil {
		probeCache = nil
	}
	r.Probe = probeCache
	return r
}

// lineWork is one talk or wait line bundled with everything needed to
// render its clip, threaded through the pipeline from step 1 to step 5.
type lineWork struct {
	index    int
	line     config.Line
	data     audiophase.LineData
	startAt  float64 // cumulative scene-relative start time, after pad application
	duration float64 // post-pad duration
}

// clipOutputs collects the per-line rendered clip paths in line order, so
// concatenation (step 7) can proceed once every renderer goroutine
// finishes, regardless of completion order.
type clipOutputs struct {
	mu    sync.Mutex
	paths []string
}

func newClipOutputs(n int) *clipOutputs {
	return &clipOutputs{paths: make([]string, n)}
}

func (c *clipOutputs) set(i int, path string) {
	c.mu.Lock()
	c.paths[i] = path
	c.mu.Unlock()
}
