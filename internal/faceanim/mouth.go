package faceanim

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ComputeMouthTimeline decodes wavPath and derives its mouth-state
// timeline at fps, classifying each window by its RMS loudness relative
// to the clip's peak RMS. thrOpen must exceed thrHalf.
func ComputeMouthTimeline(wavPath string, fps int, thrHalf, thrOpen float64) ([]MouthSeg, error) {
	if thrOpen <= thrHalf {
		return nil, fmt.Errorf("faceanim: thr_open (%g) must exceed thr_half (%g)", thrOpen, thrHalf)
	}
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("faceanim: open %s: %w", wavPath, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("faceanim: decode %s: %w", wavPath, err)
	}
	samples, sampleRate := monoFloatSamples(buf)
	return AnalyzeMouth(samples, sampleRate, fps, thrHalf, thrOpen), nil
}

// monoFloatSamples down-mixes an arbitrary-channel int PCM buffer to a
// single mono channel of float samples in [-1, 1], supporting 8/16/24/32
// bit source depth.
func monoFloatSamples(buf *audio.IntBuffer) (samples []float64, sampleRate float64) {
	ch := buf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	maxVal := float64(int64(1) << uint(bitDepth-1))
	frames := len(buf.Data) / ch
	samples = make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c]) / maxVal
		}
		samples[i] = sum / float64(ch)
	}
	return samples, float64(buf.Format.SampleRate)
}

// AnalyzeMouth is the pure core of ComputeMouthTimeline, split out so it
// is testable without a real WAV file.
func AnalyzeMouth(samples []float64, sampleRate float64, fps int, thrHalf, thrOpen float64) []MouthSeg {
	totalDuration := 0.0
	if sampleRate > 0 {
		totalDuration = float64(len(samples)) / sampleRate
	}
	if len(samples) == 0 {
		return []MouthSeg{{Start: 0, End: totalDuration, State: MouthClose}}
	}

	windowSize := int(sampleRate / float64(fps))
	if windowSize < 1 {
		windowSize = 1
	}

	rms := windowRMS(samples, windowSize)
	peak := 0.0
	for _, r := range rms {
		if r > peak {
			peak = r
		}
	}
	if peak < 1e-9 {
		return []MouthSeg{{Start: 0, End: totalDuration, State: MouthClose}}
	}

	states := make([]MouthState, len(rms))
	for i, r := range rms {
		ratio := r / peak
		switch {
		case ratio >= thrOpen:
			states[i] = MouthOpen
		case ratio >= thrHalf:
			states[i] = MouthHalf
		default:
			states[i] = MouthClose
		}
	}
	return mergeWindows(states, windowSize, sampleRate, totalDuration)
}

func windowRMS(samples []float64, windowSize int) []float64 {
	n := (len(samples) + windowSize - 1) / windowSize
	rms := make([]float64, n)
	for w := 0; w < n; w++ {
		start := w * windowSize
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		var sumSq float64
		for _, s := range samples[start:end] {
			sumSq += s * s
		}
		count := end - start
		if count == 0 {
			continue
		}
		rms[w] = math.Sqrt(sumSq / float64(count))
	}
	return rms
}

func mergeWindows(states []MouthState, windowSize int, sampleRate, totalDuration float64) []MouthSeg {
	var segs []MouthSeg
	segStart := 0
	for i := 1; i <= len(states); i++ {
		if i < len(states) && states[i] == states[segStart] {
			continue
		}
		start := float64(segStart*windowSize) / sampleRate
		end := float64(i*windowSize) / sampleRate
		if i == len(states) {
			end = totalDuration
		}
		segs = append(segs, MouthSeg{Start: start, End: end, State: states[segStart]})
		segStart = i
	}
	return segs
}
