package filtergraph

import "github.com/scenecast/scenecast/internal/capability"

// OverlayPath selects which hardware path a clip's overlay compositing
// uses, per spec.md §4.5 step 1.
type OverlayPath string

const (
	// PathCPU composites every overlay (characters, inserts, subtitle
	// PNG, face-anim PNGs) on the CPU. Required whenever an RGBA-alpha
	// overlay is present, since no probed GPU overlay filter here
	// composites alpha reliably across every hardware family.
	PathCPU OverlayPath = "cpu"
	// PathCUDA composites overlays with overlay_cuda/scale_cuda.
	PathCUDA OverlayPath = "cuda"
	// PathHybrid scales the background on the GPU, downloads it, then
	// composites overlays on the CPU — used when CPU overlays are
	// required but GPU scaling is available and permitted.
	PathHybrid OverlayPath = "hybrid"
)

// ClipOverlayInputs summarizes what a single clip needs to composite,
// enough to decide its overlay path without re-deriving it from the full
// Line.
type ClipOverlayInputs struct {
	HasAlphaOverlay   bool // characters, image insert, or subtitle PNG present
	AllowExperimental bool // config override permitting GPU alpha overlay paths
}

// SelectPath implements spec.md §4.5 step 1. The process-wide
// hw_filter_mode, read from prober, forces CPU (or at most GPU-scale-only
// via the hybrid path) regardless of what the clip would otherwise
// prefer.
func SelectPath(prober *capability.Prober, in ClipOverlayInputs) OverlayPath {
	mode := prober.FilterMode()

	wantsCPUOverlay := in.HasAlphaOverlay && !in.AllowExperimental

	if mode == capability.FilterModeCPU {
		if wantsCPUOverlay && prober.HasGPUScaleFilters() {
			return PathHybrid
		}
		return PathCPU
	}

	if wantsCPUOverlay {
		if prober.HasGPUScaleFilters() {
			return PathHybrid
		}
		return PathCPU
	}

	if prober.HasCUDAFilters() {
		return PathCUDA
	}
	if prober.HasGPUScaleFilters() {
		return PathHybrid
	}
	return PathCPU
}
