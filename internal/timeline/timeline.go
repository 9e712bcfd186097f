// Package timeline accumulates the append-only event log the Audio Phase
// builds while synthesizing each line (spec.md §3's Timeline type) and
// persists it in the formats the Orchestrator exposes to the user: a
// human-readable Markdown/CSV report and an SRT/ASS subtitle file. No
// external collaborator stands in for this the way render_subtitle_png or
// the transcoder do — it is pure data formatting the Orchestrator owns.
package timeline

import "sync"

// Entry is one timeline row, per spec.md §3: a time-ordered span with an
// optional display description/text.
type Entry struct {
	StartTime   float64
	Duration    float64
	Description string
	Text        string
}

// Timeline is an append-only, concurrency-safe event log. The zero value
// is not usable; use New.
type Timeline struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty Timeline.
func New() *Timeline {
	return &Timeline{}
}

// Append adds one entry. Satisfies the audiophase.TimelineSink interface
// shape so the Audio Phase can write directly into a Timeline without
// internal/audiophase importing this package.
func (t *Timeline) Append(startTime, duration float64, description, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{
		StartTime:   startTime,
		Duration:    duration,
		Description: description,
		Text:        text,
	})
}

// Entries returns a snapshot copy of the accumulated entries, in append
// order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
