package filtergraph

import (
	"fmt"
	"strings"

	"github.com/scenecast/scenecast/internal/config"
)

// anchorOffset returns the x, y pad/crop offset expressions for anchor
// given the outer (padW, padH) and inner (w, h) sizes, honoring an
// additional pixel offset. Matches the 3x3 anchor grid in
// config.AnchorMode.
func anchorOffset(anchor config.AnchorMode, outerW, outerH, innerW, innerH string, offsetX, offsetY int) (x, y string) {
	switch anchor {
	case config.AnchorTopLeft:
		x, y = "0", "0"
	case config.AnchorTopCenter:
		x, y = fmt.Sprintf("(%s-%s)/2", outerW, innerW), "0"
	case config.AnchorTopRight:
		x, y = fmt.Sprintf("%s-%s", outerW, innerW), "0"
	case config.AnchorCenterLeft:
		x, y = "0", fmt.Sprintf("(%s-%s)/2", outerH, innerH)
	case config.AnchorCenterRight:
		x, y = fmt.Sprintf("%s-%s", outerW, innerW), fmt.Sprintf("(%s-%s)/2", outerH, innerH)
	case config.AnchorBottomLeft:
		x, y = "0", fmt.Sprintf("%s-%s", outerH, innerH)
	case config.AnchorBottomCenter:
		x, y = fmt.Sprintf("(%s-%s)/2", outerW, innerW), fmt.Sprintf("%s-%s", outerH, innerH)
	case config.AnchorBottomRight:
		x, y = fmt.Sprintf("%s-%s", outerW, innerW), fmt.Sprintf("%s-%s", outerH, innerH)
	default: // center
		x, y = fmt.Sprintf("(%s-%s)/2", outerW, innerW), fmt.Sprintf("(%s-%s)/2", outerH, innerH)
	}
	if offsetX != 0 {
		x = fmt.Sprintf("%s+%d", x, offsetX)
	}
	if offsetY != 0 {
		y = fmt.Sprintf("%s+%d", y, offsetY)
	}
	return x, y
}

// BuildBackgroundFit returns the comma-joined filter ops (no brackets,
// caller wraps into a full chain) that fit a background into w x h per
// layout.Fit, per spec.md §4.5 step 2. preScaled skips fitting entirely
// (the input is already a scene-base at the target size); applyFPS
// appends an fps filter as the last stage.
func BuildBackgroundFit(layout config.BackgroundLayout, w, h, fps int, preScaled, applyFPS bool) string {
	if preScaled {
		if applyFPS {
			return fmt.Sprintf("fps=%d", fps)
		}
		return "null"
	}

	var stages []string
	switch layout.Fit {
	case config.FitStretch:
		stages = append(stages, fmt.Sprintf("scale=%d:%d", w, h))
	case config.FitContain:
		x, y := anchorOffset(layout.Anchor, fmt.Sprintf("%d", w), fmt.Sprintf("%d", h), "iw", "ih", layout.Position.X, layout.Position.Y)
		stages = append(stages,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
			fmt.Sprintf("pad=%d:%d:%s:%s:color=%s", w, h, x, y, layout.FillColor),
		)
	case config.FitCover:
		x, y := anchorOffset(layout.Anchor, "iw", "ih", fmt.Sprintf("%d", w), fmt.Sprintf("%d", h), layout.Position.X, layout.Position.Y)
		stages = append(stages,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", w, h),
			fmt.Sprintf("crop=%d:%d:%s:%s", w, h, x, y),
		)
	case config.FitWidth:
		stages = append(stages,
			fmt.Sprintf("scale=%d:-2", w),
			fmt.Sprintf("crop=%d:%d", w, h),
			fmt.Sprintf("pad=%d:%d:0:0:color=%s", w, h, layout.FillColor),
		)
	case config.FitHeight:
		stages = append(stages,
			fmt.Sprintf("scale=-2:%d", h),
			fmt.Sprintf("crop=%d:%d", w, h),
			fmt.Sprintf("pad=%d:%d:0:0:color=%s", w, h, layout.FillColor),
		)
	default:
		stages = append(stages, fmt.Sprintf("scale=%d:%d", w, h))
	}
	if applyFPS {
		stages = append(stages, fmt.Sprintf("fps=%d", fps))
	}
	return strings.Join(stages, ",")
}
