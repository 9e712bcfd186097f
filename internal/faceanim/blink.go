package faceanim

import (
	"crypto/md5"
	"encoding/binary"
	"math/rand"
)

// seedFromLineID derives a deterministic 32-bit PRNG seed from a line_id,
// so the same line always blinks the same way across runs and cache hits.
func seedFromLineID(lineID string) uint32 {
	sum := md5.Sum([]byte(lineID))
	return binary.BigEndian.Uint32(sum[:4])
}

// GenerateBlinkTimeline produces a deterministic blink schedule over
// [0, duration]: baseline eyes-open, with closures of close_frames/fps
// seconds inserted at random intervals drawn from [minInterval,
// maxInterval]. No blink extends past duration.
func GenerateBlinkTimeline(lineID string, duration float64, fps int, minInterval, maxInterval float64, closeFrames int) []BlinkSeg {
	rng := rand.New(rand.NewSource(int64(seedFromLineID(lineID))))
	blinkDur := float64(closeFrames) / float64(fps)

	var segs []BlinkSeg
	t := minInterval + rng.Float64()*(maxInterval-minInterval)
	for t+blinkDur <= duration {
		segs = append(segs, BlinkSeg{Start: t, End: t + blinkDur})
		gap := minInterval + rng.Float64()*(maxInterval-minInterval)
		t += blinkDur + gap
	}
	return segs
}
