package faceanim

import (
	"math"
	"testing"
)

func sine(freq, amp float64, n int, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func TestAnalyzeMouthSilenceIsAllClose(t *testing.T) {
	samples := make([]float64, 1000)
	segs := AnalyzeMouth(samples, 16000, 30, 0.2, 0.6)
	if len(segs) != 1 || segs[0].State != MouthClose {
		t.Fatalf("expected a single close segment for silence, got %v", segs)
	}
}

func TestAnalyzeMouthLoudSegmentIsOpen(t *testing.T) {
	sampleRate := 16000.0
	loud := sine(220, 0.9, int(sampleRate), sampleRate)
	segs := AnalyzeMouth(loud, sampleRate, 30, 0.2, 0.6)
	if len(segs) == 0 {
		t.Fatal("expected at least one segment")
	}
	foundOpen := false
	for _, s := range segs {
		if s.State == MouthOpen {
			foundOpen = true
		}
	}
	if !foundOpen {
		t.Errorf("expected at least one open segment for a loud tone, got %v", segs)
	}
}

func TestAnalyzeMouthSegmentsCoverWholeDuration(t *testing.T) {
	sampleRate := 8000.0
	samples := append(sine(200, 0.1, 2000, sampleRate), sine(200, 0.9, 2000, sampleRate)...)
	segs := AnalyzeMouth(samples, sampleRate, 25, 0.2, 0.6)
	if len(segs) == 0 {
		t.Fatal("expected segments")
	}
	if segs[0].Start != 0 {
		t.Errorf("first segment start = %v, want 0", segs[0].Start)
	}
	wantEnd := float64(len(samples)) / sampleRate
	if segs[len(segs)-1].End != wantEnd {
		t.Errorf("last segment end = %v, want %v", segs[len(segs)-1].End, wantEnd)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Start != segs[i-1].End {
			t.Errorf("gap between segment %d and %d: %v != %v", i-1, i, segs[i-1].End, segs[i].Start)
		}
	}
}

func TestGenerateBlinkTimelineDeterministic(t *testing.T) {
	a := GenerateBlinkTimeline("scene1_3", 10, 30, 2, 5, 2)
	b := GenerateBlinkTimeline("scene1_3", 10, 30, 2, 5, 2)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic blink count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("blink %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateBlinkTimelineDiffersByLineID(t *testing.T) {
	a := GenerateBlinkTimeline("scene1_1", 20, 30, 2, 5, 2)
	b := GenerateBlinkTimeline("scene1_2", 20, 30, 2, 5, 2)
	if len(a) == len(b) {
		same := true
		for i := range a {
			if a[i] != b[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("expected different blink schedules for different line ids")
		}
	}
}

func TestGenerateBlinkTimelineNeverExceedsDuration(t *testing.T) {
	segs := GenerateBlinkTimeline("scene2_1", 3, 30, 0.2, 0.4, 2)
	for _, s := range segs {
		if s.End > 3 {
			t.Errorf("blink %v exceeds duration", s)
		}
	}
}
