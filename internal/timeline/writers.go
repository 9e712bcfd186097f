package timeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteMarkdown renders entries as a Markdown table: start, duration,
// description, text.
func WriteMarkdown(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprintln(w, "| start | duration | description | text |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|---|"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			formatSeconds(e.StartTime), formatSeconds(e.Duration), escapeMD(e.Description), escapeMD(e.Text)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV renders entries as CSV with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start_time", "duration", "description", "text"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatFloat(e.StartTime, 'f', 3, 64),
			strconv.FormatFloat(e.Duration, 'f', 3, 64),
			e.Description,
			e.Text,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSRT renders every entry with non-empty Text as a numbered SRT
// subtitle cue. Entries with empty Text (wait lines, non-dialogue events)
// are skipped.
func WriteSRT(w io.Writer, entries []Entry) error {
	n := 0
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		n++
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			n, srtTimestamp(e.StartTime), srtTimestamp(e.StartTime+e.Duration), e.Text); err != nil {
			return err
		}
	}
	return nil
}

// WriteASS renders every entry with non-empty Text as an ASS Dialogue
// event, using a minimal single-style header sufficient for playback.
func WriteASS(w io.Writer, entries []Entry) error {
	header := "[Script Info]\n" +
		"ScriptType: v4.00+\n" +
		"\n[V4+ Styles]\n" +
		"Format: Name, Fontname, Fontsize, PrimaryColour, OutlineColour, Bold, Outline, Alignment\n" +
		"Style: Default,Noto Sans JP,48,&H00FFFFFF,&H00000000,0,2,2\n" +
		"\n[Events]\n" +
		"Format: Layer, Start, End, Style, Text\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,%s\n",
			assTimestamp(e.StartTime), assTimestamp(e.StartTime+e.Duration), e.Text); err != nil {
			return err
		}
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func escapeMD(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, '\\', '|')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

// srtTimestamp formats seconds as SRT's HH:MM:SS,mmm.
func srtTimestamp(s float64) string {
	if s < 0 {
		s = 0
	}
	totalMs := int64(s*1000 + 0.5)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	sec := totalSec % 60
	totalMin := totalSec / 60
	minute := totalMin % 60
	hour := totalMin / 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hour, minute, sec, ms)
}

// assTimestamp formats seconds as ASS's H:MM:SS.cc (centiseconds).
func assTimestamp(s float64) string {
	if s < 0 {
		s = 0
	}
	totalCs := int64(s*100 + 0.5)
	cs := totalCs % 100
	totalSec := totalCs / 100
	sec := totalSec % 60
	totalMin := totalSec / 60
	minute := totalMin % 60
	hour := totalMin / 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", hour, minute, sec, cs)
}
