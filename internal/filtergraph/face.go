package filtergraph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scenecast/scenecast/internal/audiophase"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/faceanim"
)

// faceAssetNames are the sibling PNG filenames looked up next to a
// character's image_path for its face-overlay states. No field in
// spec.md's OverlayPlacement names these paths explicitly; a fixed
// sibling-file convention keeps screenplay authors from having to spell
// out three extra paths per character.
const (
	faceAssetEyesClose = "eyes_close.png"
	faceAssetMouthHalf = "mouth_half.png"
	faceAssetMouthOpen = "mouth_open.png"
)

// faceAssetPath resolves a face-overlay asset path relative to the
// character's base image.
func faceAssetPath(characterImagePath, name string) string {
	return filepath.Join(filepath.Dir(characterImagePath), name)
}

// blinkEnableExpr builds the overlay `enable` expression true during any
// blink segment.
func blinkEnableExpr(segs []faceanim.BlinkSeg) string {
	var clauses []string
	for _, s := range segs {
		if s.Start >= s.End {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("between(t,%g,%g)", s.Start, s.End))
	}
	if len(clauses) == 0 {
		return "0"
	}
	return strings.Join(clauses, "+")
}

// mouthEnableExpr builds the overlay `enable` expression true during every
// mouth segment matching state ("half" or "open"), clipping each segment's
// start to no earlier than clipStart (spec.md §4.5 step 5's enter_duration
// mouth clip; blinks are never clipped).
func mouthEnableExpr(segs []faceanim.MouthSeg, state string, clipStart float64) string {
	var want faceanim.MouthState
	switch state {
	case "half":
		want = faceanim.MouthHalf
	case "open":
		want = faceanim.MouthOpen
	default:
		return "0"
	}
	var clauses []string
	for _, s := range segs {
		if s.State != want {
			continue
		}
		start := s.Start
		if start < clipStart {
			start = clipStart
		}
		if start >= s.End {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("between(t,%g,%g)", start, s.End))
	}
	if len(clauses) == 0 {
		return "0"
	}
	return strings.Join(clauses, "+")
}

// buildFaceOverlays adds overlay chains for the blink and mouth-state PNGs
// of anim, per spec.md §4.5 step 5. numericX/numericY are the base
// character's static anchor position; dynamicX/dynamicY are its full
// (possibly time-varying) expression. Face overlays use the numeric
// anchor unless dynamic is true, in which case they inherit the dynamic
// expression so mouth/eyes track a moving character. Returns the final
// output label (bgLabel unchanged if anim is nil or no state is active).
func buildFaceOverlays(g *Graph, anim *audiophase.FaceAnim, characterImagePath string, numericX, numericY, dynamicX, dynamicY string, dynamic bool, enterEffect string, enterDuration float64, bgLabel string, labelPrefix string) string {
	if anim == nil {
		return bgLabel
	}

	x, y := numericX, numericY
	if dynamic {
		x, y = dynamicX, dynamicY
	}

	mouthClipStart := 0.0
	if enterDuration > 0 && (enterEffect == config.EffectFade || strings.HasPrefix(enterEffect, "slide_")) {
		mouthClipStart = enterDuration
	}

	cur := bgLabel
	if eyesExpr := blinkEnableExpr(anim.Eyes); eyesExpr != "0" {
		cur = overlayFacePNG(g, faceAssetPath(characterImagePath, faceAssetEyesClose), cur, x, y, eyesExpr, labelPrefix+"_eyes")
	}
	if halfExpr := mouthEnableExpr(anim.Mouth, "half", mouthClipStart); halfExpr != "0" {
		cur = overlayFacePNG(g, faceAssetPath(characterImagePath, faceAssetMouthHalf), cur, x, y, halfExpr, labelPrefix+"_mhalf")
	}
	if openExpr := mouthEnableExpr(anim.Mouth, "open", mouthClipStart); openExpr != "0" {
		cur = overlayFacePNG(g, faceAssetPath(characterImagePath, faceAssetMouthOpen), cur, x, y, openExpr, labelPrefix+"_mopen")
	}
	return cur
}

// overlayFacePNG adds assetPath as a new input, formats it to rgba, and
// overlays it onto bgLabel at (x, y) gated by enableExpr.
func overlayFacePNG(g *Graph, assetPath, bgLabel, x, y, enableExpr, outLabel string) string {
	idx := g.AddInput(assetPath)
	in := StreamRef(idx, "v")
	prepLabel := outLabel + "_rgba"
	g.AddChain(fmt.Sprintf("%sformat=rgba%s", in, Label(prepLabel)))
	chain := fmt.Sprintf("%s%soverlay=x=%s:y=%s:enable='%s'%s", Label(bgLabel), Label(prepLabel), x, y, enableExpr, Label(outLabel))
	g.AddChain(chain)
	return outLabel
}
