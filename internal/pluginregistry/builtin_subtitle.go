package pluginregistry

import "fmt"

// buildBounceSubtitle implements subtitle:bounce: the subtitle enters
// with a decaying vertical bounce around its base y, settling to BaseY by
// settleDuration.
func buildBounceSubtitle(ctx SubtitleContext, params map[string]interface{}) (string, error) {
	amp := floatParam(params, "amplitude", 20)
	freq := floatParam(params, "frequency", 3)
	settle := floatParam(params, "settle_duration", 0.6)
	if settle <= 0 {
		return ctx.BaseY, nil
	}
	t := ctx.Time()
	decay := fmt.Sprintf("exp(-4*%s/%g)", t, settle)
	return fmt.Sprintf("(%s)-(%g)*(%s)*sin(2*PI*%g*%s)", ctx.BaseY, amp, decay, freq, t), nil
}

func registerBuiltinSubtitles(reg *Registry) {
	spec := PluginSpec{
		PluginID: "scenecast.builtin.bounce_subtitle",
		Version:  "1.0.0",
		Kind:     KindSubtitle,
		Provides: []string{"subtitle:bounce"},
		Source:   SourceBuiltin,
		Enabled:  true,
	}
	reg.RegisterSubtitle("subtitle:bounce", spec, buildBounceSubtitle)
}
