package sceneplanner

import "github.com/scenecast/scenecast/internal/config"

// Run is a maximal consecutive range of talk lines [Start, End) sharing
// the same static-overlay signature, spec.md §4.8 step 4. Start and End
// index the scene's full Lines slice (wait lines break a run: a run never
// spans one).
type Run struct {
	Start, End int // [Start, End) into the scene's Lines slice
	Signature  staticKey
}

// lineSignature is the combined static-character + insert signature for
// one line, used to group consecutive lines into a run. Lines with
// different characters/inserts, or wait lines, never share a signature.
func lineSignature(line config.Line) staticKey {
	if line.Kind != config.LineTalk {
		return ""
	}
	sig := staticKey("")
	for _, co := range line.Characters {
		if !isStatic(co) {
			continue
		}
		sig += "/" + characterKey(co)
	}
	sig += "#" + insertKey(line.Insert)
	return sig
}

// DetectRuns partitions lines into maximal consecutive runs of equal
// non-empty signature. Only runs of length >= 2 are of interest to the
// caller (spec.md §4.8 step 4); shorter runs and wait lines are omitted
// entirely — the caller falls back to per-line rendering for gaps.
func DetectRuns(lines []config.Line) []Run {
	var runs []Run
	i := 0
	for i < len(lines) {
		sig := lineSignature(lines[i])
		if sig == "" {
			i++
			continue
		}
		j := i + 1
		for j < len(lines) && lineSignature(lines[j]) == sig {
			j++
		}
		if j-i >= 2 {
			runs = append(runs, Run{Start: i, End: j, Signature: sig})
		}
		i = j
	}
	return runs
}
