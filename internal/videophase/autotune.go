package videophase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/scenecast/scenecast/internal/capability"
)

// autotuneHintFile is the persisted decision spec.md §4.8's Auto-tune
// paragraph names, relative to the cache directory.
const autotuneHintFile = "autotune_hint.json"

// AutotuneHint is the persisted cross-run auto-tune decision.
type AutotuneHint struct {
	DecidedMode   string  `json:"decided_mode"`
	ClipWorkers   int     `json:"clip_workers"`
	CPURatio      float64 `json:"cpu_ratio"`
	AvgElapsed    float64 `json:"avg_elapsed"`
	P90Elapsed    float64 `json:"p90_elapsed"`
	FFmpegVersion string  `json:"ffmpeg_version"`
	HwKind        string  `json:"hw_kind"`
}

// autotuner profiles the first profileCount talk clips of a run, then
// decides (once) whether to force the CPU filter path and what
// clip_workers to use, per spec.md §4.8's Auto-tune paragraph.
type autotuner struct {
	mu           sync.Mutex
	profileCount int
	cacheDir     string
	prober       *capability.Prober
	log          Logger

	loadedHint *AutotuneHint // valid hint from a prior run, if still applicable
	decided    bool
	samples    []sample
	workers    int // current clip_workers; mutated once auto-tune decides
}

type sample struct {
	cpuOverlay bool
	elapsed    time.Duration
}

func newAutotuner(profileCount int, cacheDir string, prober *capability.Prober, log Logger) *autotuner {
	if profileCount <= 0 {
		profileCount = 4
	}
	t := &autotuner{profileCount: profileCount, cacheDir: cacheDir, prober: prober, log: log}
	t.loadHint()
	return t
}

func (t *autotuner) hintPath() string {
	return filepath.Join(t.cacheDir, autotuneHintFile)
}

// loadHint reads a prior run's persisted hint, ignoring it (per spec.md)
// if the transcoder version or hardware kind has since changed.
func (t *autotuner) loadHint() {
	data, err := os.ReadFile(t.hintPath())
	if err != nil {
		return
	}
	var hint AutotuneHint
	if err := json.Unmarshal(data, &hint); err != nil {
		return
	}
	if hint.FFmpegVersion != t.prober.FfmpegVersion() {
		return
	}
	if hint.HwKind != string(t.prober.HwEncoderKind()) {
		return
	}
	t.loadedHint = &hint
	if hint.DecidedMode == string(capability.FilterModeCPU) {
		t.prober.SetFilterMode(capability.FilterModeCPU)
	}
	t.workers = hint.ClipWorkers
	t.decided = true // a still-applicable prior hint skips this run's profiling
	t.log.Info("videophase: loaded auto-tune hint (mode=%s workers=%d cpu_ratio=%.2f)",
		hint.DecidedMode, hint.ClipWorkers, hint.CPURatio)
}

// record is called once per talk clip rendered, in completion order, with
// whether it used a CPU overlay path and how long it took. Once
// profileCount samples are in, it decides and persists the hint exactly
// once; subsequent calls are no-ops.
func (t *autotuner) record(cpuOverlay bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.decided {
		return
	}
	t.samples = append(t.samples, sample{cpuOverlay: cpuOverlay, elapsed: elapsed})
	if len(t.samples) < t.profileCount {
		return
	}
	t.decideLocked()
}

func (t *autotuner) decideLocked() {
	t.decided = true

	cpuCount := 0
	var total time.Duration
	elapsed := make([]time.Duration, 0, len(t.samples))
	for _, s := range t.samples {
		if s.cpuOverlay {
			cpuCount++
		}
		total += s.elapsed
		elapsed = append(elapsed, s.elapsed)
	}
	n := len(t.samples)
	ratio := float64(cpuCount) / float64(n)
	avg := total / time.Duration(n)
	p90 := percentile90(elapsed)

	mode := string(capability.FilterModeAuto)
	workers := t.workers
	if workers == 0 {
		workers = 2
	}
	if ratio >= 0.5 {
		mode = string(capability.FilterModeCPU)
		t.prober.SetFilterMode(capability.FilterModeCPU)
		workers = clipWorkersForCPURatio(ratio)
	}
	t.workers = workers

	hint := AutotuneHint{
		DecidedMode:   mode,
		ClipWorkers:   workers,
		CPURatio:      ratio,
		AvgElapsed:    avg.Seconds(),
		P90Elapsed:    p90.Seconds(),
		FFmpegVersion: t.prober.FfmpegVersion(),
		HwKind:        string(t.prober.HwEncoderKind()),
	}
	t.persist(hint)
	t.log.Info("videophase: auto-tune decided mode=%s workers=%d cpu_ratio=%.2f avg=%s p90=%s",
		mode, workers, ratio, avg, p90)
}

// clipWorkersForCPURatio picks 2-4 workers depending on CPU count and how
// CPU-bound the overlay mix is, per spec.md §4.8's Auto-tune paragraph.
// Heavier CPU-overlay ratios get fewer workers so each clip's filter
// threads aren't starved by contention with siblings.
func clipWorkersForCPURatio(ratio float64) int {
	cpus := runtime.NumCPU()
	workers := 2
	if cpus >= 8 && ratio < 0.8 {
		workers = 3
	}
	if cpus >= 16 && ratio < 0.65 {
		workers = 4
	}
	if workers > 4 {
		workers = 4
	}
	if workers < 2 {
		workers = 2
	}
	return workers
}

func percentile90(elapsed []time.Duration) time.Duration {
	if len(elapsed) == 0 {
		return 0
	}
	sorted := append([]time.Duration{}, elapsed...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	idx := (len(sorted)*9+9)/10 - 1 // nearest rank: ceil(0.9*n), 1-based
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func (t *autotuner) persist(hint AutotuneHint) {
	data, err := json.MarshalIndent(hint, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(t.cacheDir, 0o755); err != nil {
		t.log.Warn("videophase: persist auto-tune hint: %v", err)
		return
	}
	if err := os.WriteFile(t.hintPath(), data, 0o644); err != nil {
		t.log.Warn("videophase: persist auto-tune hint: %v", err)
	}
}

// clipWorkers returns the current clip_workers value: the auto-tune
// decision or loaded hint if present, else fall back to cfgDefault.
func (t *autotuner) clipWorkers(cfgDefault int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.workers > 0 {
		return t.workers
	}
	if cfgDefault > 0 {
		return cfgDefault
	}
	return 2
}
