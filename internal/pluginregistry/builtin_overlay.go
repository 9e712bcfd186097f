// Two overlay-builder fragment conventions exist here: bg:shake_bg and
// screen:shake_screen build whole standalone filter stages (pad+crop) run
// directly against a stream; the char:* effects instead return an
// "xOffset|yOffset" pair, since a character's position expression is
// composed once (base position + enter/leave animation + effects) rather
// than filtered as an independent stage. internal/filtergraph's character
// overlay step is responsible for splitting on "|" and adding each half
// into its x/y expression.
package pluginregistry

import (
	"fmt"
	"math"
)

// builtinSpec stamps a PluginSpec for the effects compiled into this
// binary (no plugin.yaml on disk backs these).
func builtinSpec(id string, provides ...string) PluginSpec {
	return PluginSpec{
		PluginID: "scenecast.builtin." + id,
		Version:  "1.0.0",
		Kind:     KindOverlay,
		Provides: provides,
		Source:   SourceBuiltin,
		Enabled:  true,
	}
}

// RegisterBuiltins wires the built-in overlay effect builders
// (bg:shake_bg, char:shake_char, char:bob_char, char:sway_char,
// screen:shake_screen, subtitle:bounce) into reg at builtin priority, so a
// user or package plugin can still override any of them.
func RegisterBuiltins(reg *Registry) {
	reg.RegisterOverlay("bg:shake_bg", builtinSpec("shake_bg", "bg:shake_bg"), buildShakeBg)
	reg.RegisterOverlay("char:shake_char", builtinSpec("shake_char", "char:shake_char"), buildShakeChar)
	reg.RegisterOverlay("char:bob_char", builtinSpec("bob_char", "char:bob_char"), buildBobChar)
	reg.RegisterOverlay("char:sway_char", builtinSpec("sway_char", "char:sway_char"), buildSwayChar)
	reg.RegisterOverlay("screen:shake_screen", builtinSpec("shake_screen", "screen:shake_screen"), buildShakeScreen)
	registerBuiltinSubtitles(reg)
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return def
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

// shakeParams extracts the amplitude/frequency/envelope/phase parameters
// shared by every shake-family builder.
func shakeParams(params map[string]interface{}) (ampX, ampY, freq, phase, ramp, power float64, env string) {
	ampX = floatParam(params, "amplitude_x", 4)
	ampY = floatParam(params, "amplitude_y", 4)
	freq = floatParam(params, "frequency", 4)
	phase = floatParam(params, "phase_offset", math.Pi/2)
	ramp = floatParam(params, "ramp", 0.3)
	power = floatParam(params, "power", 2)
	env = stringParam(params, "envelope", "constant")
	return
}

// buildShakeBg implements bg:shake_bg: pad the frame to add slack for the
// shake amplitude, then crop a window whose offset oscillates in x/y.
func buildShakeBg(params map[string]interface{}) (string, error) {
	duration := floatParam(params, clipDurationKey, 1)
	ampX, ampY, freq, phase, ramp, power, env := shakeParams(params)
	padding := floatParam(params, "padding", 2)

	padX := int(math.Ceil(ampX + padding))
	padY := int(math.Ceil(ampY + padding))
	envExpr := envelopeExpr(env, duration, ramp, power)

	xExpr := fmt.Sprintf("%d+(%g)*(%s)*sin(2*PI*%g*t)", padX, ampX, envExpr, freq)
	yExpr := fmt.Sprintf("%d+(%g)*(%s)*sin(2*PI*%g*t+%g)", padY, ampY, envExpr, freq, phase)

	return fmt.Sprintf(
		"pad=iw+%d:ih+%d:%d:%d,crop=iw-%d:ih-%d:'%s':'%s':eval=frame",
		2*padX, 2*padY, padX, padY, 2*padX, 2*padY, xExpr, yExpr,
	), nil
}

// buildShakeScreen implements screen:shake_screen identically to
// buildShakeBg but over the fully-composited frame. Amplitudes are used as
// given: neither this builder (which does not know W,H) nor its caller
// clamps them to the frame size.
func buildShakeScreen(params map[string]interface{}) (string, error) {
	return buildShakeBg(params)
}

// buildShakeChar implements char:shake_char: an "xOffset|yOffset" pair of
// ffmpeg overlay sub-expressions to add to a base position (no leading
// sign; callers wrap with "(base)+(offset)").
func buildShakeChar(params map[string]interface{}) (string, error) {
	duration := floatParam(params, clipDurationKey, 1)
	ampX, ampY, freq, phase, ramp, power, env := shakeParams(params)
	envExpr := envelopeExpr(env, duration, ramp, power)
	return fmt.Sprintf(
		"(%g)*(%s)*sin(2*PI*%g*t)|(%g)*(%s)*sin(2*PI*%g*t+%g)",
		ampX, envExpr, freq, ampY, envExpr, freq, phase,
	), nil
}

// buildBobChar implements char:bob_char: vertical-only sinusoidal offset,
// commonly used for an idle "breathing" motion.
func buildBobChar(params map[string]interface{}) (string, error) {
	duration := floatParam(params, clipDurationKey, 1)
	amp := floatParam(params, "amplitude", 6)
	freq := floatParam(params, "frequency", 0.5)
	ramp := floatParam(params, "ramp", 0.3)
	power := floatParam(params, "power", 2)
	env := stringParam(params, "envelope", "constant")
	envExpr := envelopeExpr(env, duration, ramp, power)
	return fmt.Sprintf("0|(%g)*(%s)*sin(2*PI*%g*t)", amp, envExpr, freq), nil
}

// buildSwayChar implements char:sway_char: horizontal-only sinusoidal
// offset, typically slower and wider than bob.
func buildSwayChar(params map[string]interface{}) (string, error) {
	duration := floatParam(params, clipDurationKey, 1)
	amp := floatParam(params, "amplitude", 10)
	freq := floatParam(params, "frequency", 0.25)
	ramp := floatParam(params, "ramp", 0.3)
	power := floatParam(params, "power", 2)
	env := stringParam(params, "envelope", "constant")
	envExpr := envelopeExpr(env, duration, ramp, power)
	return fmt.Sprintf("(%g)*(%s)*sin(2*PI*%g*t)|0", amp, envExpr, freq), nil
}
