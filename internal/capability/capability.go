// Package capability probes the installed transcoder for hardware encoder
// and GPU filter support. Results are smoke-tested (a listing alone is not
// proof a filter actually runs) and memoized for the process lifetime, and
// the process-wide hardware/CPU filter-path flag lives here.
package capability

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// EncoderKind is a hardware encoder family reported by the transcoder.
type EncoderKind string

const (
	EncoderNVENC         EncoderKind = "nvenc"
	EncoderQSV           EncoderKind = "qsv"
	EncoderVAAPI         EncoderKind = "vaapi"
	EncoderAMF           EncoderKind = "amf"
	EncoderVideoToolbox  EncoderKind = "videotoolbox"
	EncoderNone          EncoderKind = "none"
)

// FilterMode selects whether GPU filter paths are attempted.
type FilterMode string

const (
	FilterModeAuto FilterMode = "auto"
	FilterModeCUDA FilterMode = "cuda"
	FilterModeCPU  FilterMode = "cpu"
)

// Logger receives one-time diagnostic dumps when a smoke test fails.
type Logger interface {
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

// runFunc runs name with args and reports whether it exited zero. Swapped
// out in tests so smoke tests never need a real ffmpeg binary.
type runFunc func(ctx context.Context, name string, args ...string) bool

// captureFunc runs name with args and returns combined stdout. Swapped out
// in tests for the same reason as runFunc.
type captureFunc func(ctx context.Context, name string, args ...string) (string, error)

// Prober is a process-scope holder of memoized capability smoke-test
// results and the mutable hw_filter_mode flag. The zero value is not
// usable; construct with New.
type Prober struct {
	ffmpegBin string
	timeout   time.Duration
	log       Logger

	run     runFunc
	capture captureFunc

	modeMu sync.Mutex
	mode   FilterMode

	diagMu  sync.Mutex
	diagged map[string]bool

	ffmpegVersion      *memo[string]
	encoderKind        *memo[EncoderKind]
	cudaFilters        *memo[bool]
	gpuScaleFilters    *memo[bool]
	openCLFilters      *memo[bool]
	preferredCUDAScale *memo[string]
}

// New returns a Prober bound to ffmpegBin (usually "ffmpeg"), starting in
// FilterModeAuto. Smoke tests time out after 5s.
func New(ffmpegBin string, log Logger) *Prober {
	if log == nil {
		log = nopLogger{}
	}
	return &Prober{
		ffmpegBin:          ffmpegBin,
		timeout:            5 * time.Second,
		log:                log,
		run:                runSilent,
		capture:            captureOutput,
		mode:               FilterModeAuto,
		diagged:            make(map[string]bool),
		ffmpegVersion:      newMemo[string](),
		encoderKind:        newMemo[EncoderKind](),
		cudaFilters:        newMemo[bool](),
		gpuScaleFilters:    newMemo[bool](),
		openCLFilters:      newMemo[bool](),
		preferredCUDAScale: newMemo[string](),
	}
}

// FilterMode returns the current process-wide filter-path flag.
func (p *Prober) FilterMode() FilterMode {
	p.modeMu.Lock()
	defer p.modeMu.Unlock()
	return p.mode
}

// SetFilterMode forces the filter-path flag. Auto-tune and per-clip retry
// call this to fall back to FilterModeCPU; the flag is monotonic toward
// CPU within a run by convention (callers should not re-enable GPU mid-run).
func (p *Prober) SetFilterMode(mode FilterMode) {
	p.modeMu.Lock()
	defer p.modeMu.Unlock()
	p.mode = mode
}

// warnOnce emits a diagnostic through the logger at most once per capability
// name for the life of the Prober.
func (p *Prober) warnOnce(name, format string, args ...interface{}) {
	p.diagMu.Lock()
	already := p.diagged[name]
	p.diagged[name] = true
	p.diagMu.Unlock()
	if !already {
		p.log.Warn(format, args...)
	}
}

func (p *Prober) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.timeout)
}

// memo caches a single computed value for the life of the process (or the
// Prober, in tests), backed by a size-1 LRU cache keyed by a constant key.
// This is effectively a resettable sync.Once: golang-lru/v2 provides the
// storage and thread-safety, sync.Once would not let us inspect/clear it.
type memo[T any] struct {
	mu    sync.Mutex
	cache *lru.Cache[struct{}, T]
}

func newMemo[T any]() *memo[T] {
	c, err := lru.New[struct{}, T](1)
	if err != nil {
		// size=1 never errors in golang-lru/v2; panic would be unreachable.
		panic(err)
	}
	return &memo[T]{cache: c}
}

func (m *memo[T]) get(compute func() T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.cache.Get(struct{}{}); ok {
		return v
	}
	v := compute()
	m.cache.Add(struct{}{}, v)
	return v
}
