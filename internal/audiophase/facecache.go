package audiophase

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scenecast/scenecast/internal/faceanim"
)

// faceAnimKey identifies a memoized mouth timeline by the speech file's
// identity (path/mtime/size, same scheme as mediaprobe's cache key) plus
// the parameters that affect the computed timeline.
type faceAnimKey struct {
	path             string
	mtime            int64
	size             int64
	fps              int
	thrHalf, thrOpen float64
}

// faceAnimCache memoizes mouth timelines in-process, disabled by the
// FACE_CACHE_DISABLE environment variable (spec.md §6 recognized env
// vars). Blink timelines are not cached here: they are pure functions of
// (line_id, duration, fps, intervals, close_frames) cheap enough to
// recompute every time.
type faceAnimCache struct {
	entries  *lru.Cache[faceAnimKey, []faceanim.MouthSeg]
	disabled bool
}

func newFaceAnimCache(size int) *faceAnimCache {
	c, err := lru.New[faceAnimKey, []faceanim.MouthSeg](size)
	if err != nil {
		panic(err)
	}
	return &faceAnimCache{
		entries:  c,
		disabled: os.Getenv("FACE_CACHE_DISABLE") != "",
	}
}

func (c *faceAnimCache) get(key faceAnimKey) ([]faceanim.MouthSeg, bool) {
	if c.disabled {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *faceAnimCache) put(key faceAnimKey, segs []faceanim.MouthSeg) {
	if c.disabled {
		return
	}
	c.entries.Add(key, segs)
}
