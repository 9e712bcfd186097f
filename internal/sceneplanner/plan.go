package sceneplanner

import "github.com/scenecast/scenecast/internal/config"

// BuildPlan runs spec.md §4.8 steps 1, 2, and 4 for one scene: pad
// durations, static-overlay/common-insert intersection, and run
// decomposition. Scene-base/run-base video generation itself (step 3, the
// actual pre-render) is internal/videophase's job — BuildPlan only
// decides what the shared content WOULD be.
func BuildPlan(scene config.Scene, defaults config.DefaultsConfig) Plan {
	return Plan{
		Pads:             ComputePadDurations(scene.Lines, defaults),
		StaticCharacters: DetectStaticCharacters(scene.Lines),
		CommonInsert:     DetectCommonInsert(scene.Lines),
		Runs:             DetectRuns(scene.Lines),
	}
}

// TalkLineCount returns the number of talk lines in scene.
func TalkLineCount(scene config.Scene) int {
	n := 0
	for _, l := range scene.Lines {
		if l.Kind == config.LineTalk {
			n++
		}
	}
	return n
}

// NeedsSceneBase implements spec.md §4.8 step 3's condition for
// pre-rendering a full scene-base video: static overlays exist, or the
// background is a video with enough lines to amortize the pre-render, or
// the background is a still image with at least 2 lines (a still image
// fit is the same computation every line, so there is no threshold).
func (p Plan) NeedsSceneBase(scene config.Scene, bgIsVideo bool, sceneBaseThreshold int) bool {
	lineCount := TalkLineCount(scene)
	if len(p.StaticCharacters) > 0 {
		return true
	}
	if bgIsVideo && lineCount >= sceneBaseThreshold {
		return true
	}
	if !bgIsVideo && lineCount >= 2 {
		return true
	}
	return false
}
