package timeline

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestAppendAccumulatesInOrder(t *testing.T) {
	tl := New()
	tl.Append(0, 1.5, "line", "hello")
	tl.Append(1.5, 2.0, "line", "world")

	entries := tl.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Text != "hello" || entries[1].Text != "world" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestAppendConcurrentSafe(t *testing.T) {
	tl := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tl.Append(float64(i), 1, "line", "x")
		}(i)
	}
	wg.Wait()
	if len(tl.Entries()) != 50 {
		t.Fatalf("len(entries) = %d, want 50", len(tl.Entries()))
	}
}

func TestWriteMarkdownEscapesPipe(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{StartTime: 0, Duration: 1, Description: "line", Text: "a|b"}}
	if err := WriteMarkdown(&buf, entries); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `a\|b`) {
		t.Errorf("expected escaped pipe, got %q", buf.String())
	}
}

func TestWriteCSVRoundTripsFields(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{StartTime: 1.25, Duration: 2.5, Description: "talk", Text: "hi, there"}}
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "1.250") || !strings.Contains(out, "2.500") {
		t.Errorf("expected formatted timestamps, got %q", out)
	}
	if !strings.Contains(out, `"hi, there"`) {
		t.Errorf("expected quoted field with comma, got %q", out)
	}
}

func TestWriteSRTSkipsEmptyTextAndNumbersSequentially(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{
		{StartTime: 0, Duration: 1, Text: ""},
		{StartTime: 1, Duration: 2, Text: "first"},
		{StartTime: 3, Duration: 1.5, Text: "second"},
	}
	if err := WriteSRT(&buf, entries); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "1\n00:00:01,000 --> 00:00:03,000\nfirst\n\n2\n") {
		t.Errorf("unexpected SRT output:\n%s", out)
	}
}

func TestWriteASSIncludesDialogueLines(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{StartTime: 61.5, Duration: 2, Text: "hello"}}
	if err := WriteASS(&buf, entries); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Dialogue: 0,0:01:01.50,0:01:03.50,Default,hello") {
		t.Errorf("unexpected ASS output:\n%s", out)
	}
}

func TestPathResolverReturnsSamePathForSameOwner(t *testing.T) {
	r := NewPathResolver()
	p1 := r.Resolve("run-1", "/out/timeline.md")
	p2 := r.Resolve("run-1", "/out/timeline.md")
	if p1 != p2 || p1 != "/out/timeline.md" {
		t.Errorf("p1=%q p2=%q, want both unchanged", p1, p2)
	}
}

func TestPathResolverSuffixesOnCollision(t *testing.T) {
	r := NewPathResolver()
	first := r.Resolve("run-1", "/out/timeline.md")
	second := r.Resolve("run-2", "/out/timeline.md")
	third := r.Resolve("run-3", "/out/timeline.md")

	if first != "/out/timeline.md" {
		t.Errorf("first = %q", first)
	}
	if second != "/out/timeline - dup1.md" {
		t.Errorf("second = %q", second)
	}
	if third != "/out/timeline - dup2.md" {
		t.Errorf("third = %q", third)
	}
}
