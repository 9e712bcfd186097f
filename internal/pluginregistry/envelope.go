package pluginregistry

import "fmt"

// envelopeExpr returns an ffmpeg time-expression (valid with eval=frame)
// that evaluates to a 0..1 amplitude multiplier at time t, for the given
// envelope kind over a clip of the given duration. ramp is the ease
// in/out window length in seconds; power shapes ease_in/ease_out/
// ease_in_out curves (2 is a gentle ease, higher values ease harder).
//
// The source's exact numeric curve shapes are unspecified beyond naming;
// this picks the conventional power-curve definition and keeps the ramp
// symmetric for ease_in_out.
func envelopeExpr(kind string, duration, ramp, power float64) string {
	if power <= 0 {
		power = 2
	}
	switch kind {
	case "linear":
		return fmt.Sprintf("min(t/%g\\,1)", duration)
	case "ease_in":
		return fmt.Sprintf("pow(min(t/%g\\,1)\\,%g)", ramp, power)
	case "ease_out":
		return fmt.Sprintf("pow(min((%g-t)/%g\\,1)\\,%g)", duration, ramp, power)
	case "ease_in_out":
		return fmt.Sprintf(
			"if(lt(t\\,%g)\\,pow(t/%g\\,%g)\\,if(gt(t\\,%g-%g)\\,pow((%g-t)/%g\\,%g)\\,1))",
			ramp, ramp, power, duration, ramp, duration, ramp, power)
	case "constant", "":
		return "1"
	default:
		return "1"
	}
}
