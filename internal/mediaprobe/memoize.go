package mediaprobe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies a probed file by its resolved path plus the
// modification time and size observed at probe time. A changed mtime/size
// invalidates the memoized entry without needing explicit cache busting.
type cacheKey struct {
	path  string
	mtime int64
	size  int64
}

// Cache memoizes Probe results in-process for the lifetime of one run. It
// is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, *Info]
	probe   func(ctx context.Context, path string) (*Info, error)
}

// NewCache returns a Cache holding up to size entries (eviction is plain
// LRU; this is a within-run memo, not the on-disk artifact cache).
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[cacheKey, *Info](size)
	if err != nil {
		return nil, fmt.Errorf("create mediaprobe cache: %w", err)
	}
	return &Cache{entries: c, probe: Probe}, nil
}

// Get returns the probed Info for path, probing it only if the path hasn't
// been probed since its current mtime/size.
func (c *Cache) Get(ctx context.Context, path string) (*Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	key := cacheKey{path: abs, mtime: fi.ModTime().UnixNano(), size: fi.Size()}

	if info, ok := c.entries.Get(key); ok {
		return info, nil
	}
	info, err := c.probe(ctx, abs)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, info)
	return info, nil
}
