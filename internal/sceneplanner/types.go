// Package sceneplanner implements spec.md §4.8 steps 1-4: pad-duration
// computation, static-overlay/common-insert detection across a scene's
// talk lines, and run detection for partial scene-base reuse. It produces
// a Plan that internal/videophase consumes to decide, per line, which
// background input to render against and which overlays are already
// baked in.
package sceneplanner

import (
	"fmt"

	"github.com/scenecast/scenecast/internal/config"
)

// staticKey is the quantized signature spec.md §4.8 step 2 names:
// (name, expr, scale_q, anchor, x_q, y_q). Two overlays with the same key
// are considered the same static overlay for scene-base/run-base purposes
// even if their floating-point scale/position differ by less than the
// quantization step.
type staticKey string

// quantStep is the resolution static-overlay positions/scales are
// rounded to before comparison; differences smaller than this are
// considered noise rather than a real per-line change.
const quantStep = 0.01

func quantize(f float64) int64 {
	return int64(f/quantStep + 0.5)
}

func characterKey(co config.CharacterOverlay) staticKey {
	return staticKey(fmt.Sprintf("%s|%s|%d|%s|%d|%d",
		co.Name, co.Expression, quantize(co.Scale), co.Anchor,
		quantize(float64(co.Position.X)), quantize(float64(co.Position.Y))))
}

// isStatic reports whether co contributes no per-line motion: no
// enter/leave animation, no dynamic position, and no effects list (any of
// those make the overlay line-specific and therefore ineligible for
// baking into a shared scene-base/run-base).
func isStatic(co config.CharacterOverlay) bool {
	if !co.Visible {
		return false
	}
	if co.EnterEffect != "" && co.EnterEffect != config.EffectNone {
		return false
	}
	if co.LeaveEffect != "" && co.LeaveEffect != config.EffectNone {
		return false
	}
	if co.DynamicPosition || len(co.Effects) > 0 {
		return false
	}
	return true
}

func insertKey(ins *config.InsertSpec) staticKey {
	if ins == nil {
		return ""
	}
	return staticKey(fmt.Sprintf("%s|%d|%d|%d", ins.Path, quantize(ins.Scale),
		quantize(float64(ins.X)), quantize(float64(ins.Y))))
}

// PadDuration is the per-line enter/leave padding computed from its
// visible characters, spec.md §4.8 step 1.
type PadDuration struct {
	Pre  float64
	Post float64
}

// Plan is sceneplanner's complete output for one scene.
type Plan struct {
	Pads []PadDuration // one per line, talk or wait

	// StaticCharacters is the intersection of static character overlays
	// present (with an equal key) on every talk line. Nil/empty means no
	// scene-wide static character set exists.
	StaticCharacters []config.CharacterOverlay

	// CommonInsert is non-nil when every talk line shares the exact same
	// insert (by quantized key).
	CommonInsert *config.InsertSpec

	// Runs is the run decomposition used when no full scene-base applies
	// (spec.md §4.8 step 4).
	Runs []Run
}
