package filtergraph

import (
	"fmt"
	"strings"

	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/pluginregistry"
)

// CharacterInput is one visible character's prepared overlay input plus
// its placement config, ready to be composited per spec.md §4.5 step 4.
type CharacterInput struct {
	Placement config.CharacterOverlay
	InputIdx  int // index into Graph.Inputs() for this character's image
}

// charOffsetEdges maps a slide effect name to the off-screen edge
// expression it animates from/to, split by axis (only one of x/y is ever
// non-empty for a given effect).
func charOffsetEdges(effect string) (xEdge, yEdge string) {
	switch effect {
	case config.EffectSlideLeft:
		return "-overlay_w", ""
	case config.EffectSlideRight:
		return "main_w", ""
	case config.EffectSlideTop:
		return "", "-overlay_h"
	case config.EffectSlideBottom:
		return "", "main_h"
	}
	return "", ""
}

// piecewiseSlide builds a single-axis ffmpeg time expression that
// interpolates from edgeEnter to base over [0, enterDur], holds base
// through the steady middle, then interpolates from base to edgeLeave
// over [duration-leaveDur, duration]. A phase is skipped when its edge is
// empty or its duration is non-positive, leaving base untouched there.
func piecewiseSlide(base, edgeEnter string, enterDur float64, edgeLeave string, leaveDur float64, duration float64) string {
	expr := base
	if edgeLeave != "" && leaveDur > 0 {
		leaveStart := duration - leaveDur
		frac := fmt.Sprintf("((t-%g)/%g)", leaveStart, leaveDur)
		leaveExpr := fmt.Sprintf("(%s+(%s-(%s))*%s)", base, edgeLeave, base, frac)
		expr = fmt.Sprintf("if(gt(t,%g),%s,%s)", leaveStart, leaveExpr, expr)
	}
	if edgeEnter != "" && enterDur > 0 {
		frac := fmt.Sprintf("(t/%g)", enterDur)
		enterExpr := fmt.Sprintf("(%s+(%s-(%s))*(1-%s))", base, edgeEnter, base, frac)
		expr = fmt.Sprintf("if(lt(t,%g),%s,%s)", enterDur, enterExpr, expr)
	}
	return expr
}

// buildCharacterPosition computes the (x, y) overlay-position expressions
// for one character, per spec.md §4.5 step 4: anchor-based base position,
// slide enter/leave rewriting whichever axis the effect names, then
// char:* effect offsets (shake/bob/sway) summed in.
func buildCharacterPosition(reg *pluginregistry.Registry, co config.CharacterOverlay, duration float64) (xExpr, yExpr string, dynamic bool) {
	baseX, baseY := anchorOffset(co.Anchor, "main_w", "main_h", "overlay_w", "overlay_h", co.Position.X, co.Position.Y)

	enterX, enterY := charOffsetEdges(co.EnterEffect)
	leaveX, leaveY := charOffsetEdges(co.LeaveEffect)
	xExpr = piecewiseSlide(baseX, enterX, co.EnterDuration, leaveX, co.LeaveDuration, duration)
	yExpr = piecewiseSlide(baseY, enterY, co.EnterDuration, leaveY, co.LeaveDuration, duration)
	dynamic = enterX != "" || enterY != "" || leaveX != "" || leaveY != "" || co.DynamicPosition

	if len(co.Effects) > 0 && reg != nil {
		xOff, yOff := resolveCharacterEffectOffsets(reg, co.Effects, duration)
		if xOff != "" {
			xExpr = xExpr + "+" + xOff
			dynamic = true
		}
		if yOff != "" {
			yExpr = yExpr + "+" + yOff
			dynamic = true
		}
	}
	return xExpr, yExpr, dynamic
}

// resolveCharacterEffectOffsets resolves co.Effects through reg, parsing
// each builder's "xOffset|yOffset" pipe-delimited fragment (the char:*
// convention documented in pluginregistry's builtin_overlay.go) and
// summing the per-axis offsets across every effect.
func resolveCharacterEffectOffsets(reg *pluginregistry.Registry, effects []config.Effect, duration float64) (xSum, ySum string) {
	frags := reg.ResolveOverlayEffects(effects, duration)
	var xs, ys []string
	for _, f := range frags {
		parts := strings.SplitN(f, "|", 2)
		if len(parts) != 2 {
			continue
		}
		xs = append(xs, "("+parts[0]+")")
		ys = append(ys, "("+parts[1]+")")
	}
	return strings.Join(xs, "+"), strings.Join(ys, "+")
}

// buildCharacterChain renders one character overlay's full filter_complex
// chain: format=rgba + scale, fade in/out if requested, overlaid onto
// bgLabel at its computed position. Returns the output pad label.
func buildCharacterChain(g *Graph, reg *pluginregistry.Registry, ci CharacterInput, bgLabel string, duration float64, outLabel string, gpu bool) string {
	in := StreamRef(ci.InputIdx, "v")
	prepLabel := fmt.Sprintf("char%d_rgba", ci.InputIdx)

	var prep []string
	prep = append(prep, "format=rgba")
	if ci.Placement.Scale != 1.0 && ci.Placement.Scale > 0 {
		prep = append(prep, fmt.Sprintf("scale=iw*%g:ih*%g", ci.Placement.Scale, ci.Placement.Scale))
	}
	if ci.Placement.EnterEffect == config.EffectFade && ci.Placement.EnterDuration > 0 {
		prep = append(prep, fmt.Sprintf("fade=in:st=0:d=%g:alpha=1", ci.Placement.EnterDuration))
	}
	if ci.Placement.LeaveEffect == config.EffectFade && ci.Placement.LeaveDuration > 0 {
		prep = append(prep, fmt.Sprintf("fade=out:st=%g:d=%g:alpha=1", duration-ci.Placement.LeaveDuration, ci.Placement.LeaveDuration))
	}
	prepChain := fmt.Sprintf("%s%s%s", in, strings.Join(prep, ","), Label(prepLabel))
	g.AddChain(prepChain)

	xExpr, yExpr, _ := buildCharacterPosition(reg, ci.Placement, duration)
	overlayFilter := "overlay"
	if gpu {
		overlayFilter = "overlay_cuda"
	}
	chain := fmt.Sprintf("%s%s%s=x=%s:y=%s%s", Label(bgLabel), Label(prepLabel), overlayFilter, xExpr, yExpr, Label(outLabel))
	g.AddChain(chain)
	return outLabel
}
