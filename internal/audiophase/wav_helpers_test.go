package audiophase

import (
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const fakeSampleRate = 16000

// fakeWAV encodes durationSec of low-amplitude mono 16-bit PCM and returns
// the resulting WAV file bytes, standing in for a TTS engine's response in
// tests so this package never depends on a real synthesis backend.
func fakeWAV(durationSec float64) []byte {
	f, err := os.CreateTemp("", "fake*.wav")
	if err != nil {
		panic(err)
	}
	name := f.Name()
	defer os.Remove(name)

	n := int(durationSec * fakeSampleRate)
	samples := make([]int, n)
	for i := range samples {
		if i%4 == 0 {
			samples[i] = 2000
		}
	}
	enc := wav.NewEncoder(f, fakeSampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: fakeSampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		panic(err)
	}
	if err := enc.Close(); err != nil {
		panic(err)
	}
	f.Close()

	data, err := os.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

func writeWAVFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func readWAVDuration(t *testing.T, path string) float64 {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	dur, err := d.Duration()
	if err != nil {
		t.Fatalf("duration %s: %v", path, err)
	}
	return dur.Seconds()
}
