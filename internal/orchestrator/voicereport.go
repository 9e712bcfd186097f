package orchestrator

import (
	"fmt"
	"io"
	"sort"

	"github.com/scenecast/scenecast/internal/audiophase"
)

// voiceTally is one speaker's aggregated usage across the whole run.
type voiceTally struct {
	speakerID int
	lines     int
	runes     int
}

// aggregateVoiceUsage sums VoicevoxUsage entries by speaker, sorted by
// speaker id for stable report output.
func aggregateVoiceUsage(usage []audiophase.VoicevoxUsage) []voiceTally {
	bySpeaker := make(map[int]*voiceTally)
	for _, u := range usage {
		t, ok := bySpeaker[u.SpeakerID]
		if !ok {
			t = &voiceTally{speakerID: u.SpeakerID}
			bySpeaker[u.SpeakerID] = t
		}
		t.lines++
		t.runes += len([]rune(u.Text))
	}
	tallies := make([]voiceTally, 0, len(bySpeaker))
	for _, t := range bySpeaker {
		tallies = append(tallies, *t)
	}
	sort.Slice(tallies, func(i, j int) bool { return tallies[i].speakerID < tallies[j].speakerID })
	return tallies
}

// writeVoiceUsageReport renders a per-speaker line-count/character-count
// breakdown as a Markdown table, mirroring internal/timeline.WriteMarkdown's
// shape.
func writeVoiceUsageReport(w io.Writer, usage []audiophase.VoicevoxUsage) error {
	tallies := aggregateVoiceUsage(usage)
	if _, err := fmt.Fprintln(w, "| speaker_id | lines | characters |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|"); err != nil {
		return err
	}
	for _, t := range tallies {
		if _, err := fmt.Fprintf(w, "| %d | %d | %d |\n", t.speakerID, t.lines, t.runes); err != nil {
			return err
		}
	}
	return nil
}
