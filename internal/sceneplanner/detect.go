package sceneplanner

import (
	"github.com/scenecast/scenecast/internal/config"
)

// ComputePadDurations implements spec.md §4.8 step 1: for every talk
// line, pre = max(enter_duration) and post = max(leave_duration) over its
// visible characters; wait lines get zero pad on both sides.
func ComputePadDurations(lines []config.Line, defaults config.DefaultsConfig) []PadDuration {
	pads := make([]PadDuration, len(lines))
	for i, line := range lines {
		if line.Kind != config.LineTalk {
			continue
		}
		var pre, post float64
		for _, co := range line.Characters {
			if !co.Visible {
				continue
			}
			enter := co.EnterDuration
			if enter <= 0 && co.EnterEffect != "" && co.EnterEffect != config.EffectNone {
				enter = defaults.EnterDuration
			}
			leave := co.LeaveDuration
			if leave <= 0 && co.LeaveEffect != "" && co.LeaveEffect != config.EffectNone {
				leave = defaults.LeaveDuration
			}
			if enter > pre {
				pre = enter
			}
			if leave > post {
				post = leave
			}
		}
		pads[i] = PadDuration{Pre: pre, Post: post}
	}
	return pads
}

// FilterStatic returns the subset of chars that are static (non-animated,
// visible) overlays, in the same order. Used by internal/videophase to
// re-derive a run's bakeable character set from one of its lines.
func FilterStatic(chars []config.CharacterOverlay) []config.CharacterOverlay {
	var out []config.CharacterOverlay
	for _, co := range chars {
		if isStatic(co) {
			out = append(out, co)
		}
	}
	return out
}

// DetectStaticCharacters implements spec.md §4.8 step 2's character half:
// the intersection, by quantized key, of static (non-animated) visible
// character overlays across every talk line. A character present on some
// talk lines but not others, or whose key differs anywhere, is excluded —
// it is not safe to bake into a scene-wide base.
func DetectStaticCharacters(lines []config.Line) []config.CharacterOverlay {
	var talkLines []config.Line
	for _, l := range lines {
		if l.Kind == config.LineTalk {
			talkLines = append(talkLines, l)
		}
	}
	if len(talkLines) == 0 {
		return nil
	}

	counts := make(map[staticKey]int)
	rep := make(map[staticKey]config.CharacterOverlay)
	for _, line := range talkLines {
		seen := make(map[staticKey]bool)
		for _, co := range line.Characters {
			if !isStatic(co) {
				continue
			}
			k := characterKey(co)
			if seen[k] {
				continue // duplicate key within one line doesn't double-count
			}
			seen[k] = true
			counts[k]++
			rep[k] = co
		}
	}

	var out []config.CharacterOverlay
	for k, n := range counts {
		if n == len(talkLines) {
			out = append(out, rep[k])
		}
	}
	return out
}

// DetectCommonInsert implements spec.md §4.8 step 2's insert half: a
// single config.InsertSpec shared (by quantized key) across every talk
// line, or nil if none qualifies.
func DetectCommonInsert(lines []config.Line) *config.InsertSpec {
	var talkLines []config.Line
	for _, l := range lines {
		if l.Kind == config.LineTalk {
			talkLines = append(talkLines, l)
		}
	}
	if len(talkLines) == 0 {
		return nil
	}

	var want staticKey
	var rep *config.InsertSpec
	for i, line := range talkLines {
		if line.Insert == nil {
			return nil
		}
		k := insertKey(line.Insert)
		if i == 0 {
			want = k
			rep = line.Insert
			continue
		}
		if k != want {
			return nil
		}
	}
	return rep
}
