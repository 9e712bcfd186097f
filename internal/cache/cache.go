// Package cache implements the content-addressed get-or-create artifact
// cache shared by every phase: a file on disk at
// <cache_dir>/<name>_<hash>.<ext>, hashed from a caller-supplied key-data
// dictionary, with TTL and total-size eviction.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scenecast/scenecast/internal/errs"
)

// hintFileName is excluded from eviction scans; it is auto-tune's own
// persisted state, not an artifact.
const hintFileName = "autotune_hint.json"

// Manager is the shared artifact cache for one pipeline run.
type Manager struct {
	dir          string
	ttl          time.Duration
	maxSizeBytes int64
	noCache      bool
	refresh      bool

	hot *lru.Cache[string, string] // key hash -> resolved path; fronts repeated GetCachedPath lookups

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	activeMu sync.Mutex
	active   map[string]bool // paths currently being written by a creator; eviction skips these
}

// New creates a Manager rooted at dir. ttlHours <= 0 disables TTL
// eviction; maxSizeMB <= 0 disables size eviction. When noCache is true,
// dir is never created and every GetOrCreate call writes to a scratch
// temp path instead.
func New(dir string, ttlHours float64, maxSizeMB int64, noCache, refresh bool) (*Manager, error) {
	if !noCache {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &errs.CacheError{Op: "init", Err: err}
		}
	}
	hot, err := lru.New[string, string](256)
	if err != nil {
		return nil, &errs.CacheError{Op: "init", Err: err}
	}
	return &Manager{
		dir:          dir,
		ttl:          time.Duration(ttlHours * float64(time.Hour)),
		maxSizeBytes: maxSizeMB * 1024 * 1024,
		noCache:      noCache,
		refresh:      refresh,
		hot:          hot,
		locks:        make(map[string]*sync.Mutex),
		active:       make(map[string]bool),
	}, nil
}

func (m *Manager) entryPath(name, ext, hash string) string {
	return filepath.Join(m.dir, fmt.Sprintf("%s_%s.%s", name, hash, ext))
}

// GetCachedPath returns the cached path for key/name/ext if it already
// exists on disk, with no side effects beyond refreshing its access time.
func (m *Manager) GetCachedPath(key Key, name, ext string) (string, bool) {
	if m.noCache {
		return "", false
	}
	hash := key.Hash()
	if p, ok := m.hot.Get(hash); ok {
		if _, err := os.Stat(p); err == nil {
			m.touch(p)
			return p, true
		}
		m.hot.Remove(hash)
	}
	path := m.entryPath(name, ext, hash)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	m.touch(path)
	m.hot.Add(hash, path)
	return path, true
}

// SaveToCache copies src into the cache under key/name/ext and runs
// eviction. With noCache set it is a no-op that returns src unchanged.
func (m *Manager) SaveToCache(src string, key Key, name, ext string) (string, error) {
	if m.noCache {
		return src, nil
	}
	hash := key.Hash()
	dest := m.entryPath(name, ext, hash)
	if err := m.copyIn(src, dest); err != nil {
		return "", &errs.CacheError{Op: "save", Key: hash, Err: err}
	}
	m.hot.Add(hash, dest)
	m.evict()
	return dest, nil
}

// Creator writes a complete artifact and returns the path it wrote to.
// Most creators write directly to outPath and return it unchanged;
// returning a different path lets a creator use its own scratch naming,
// in which case GetOrCreate relocates the result into outPath.
type Creator func(outPath string) (string, error)

// GetOrCreate returns the cached artifact for key/name/ext, invoking
// create to produce it if absent. In noCache mode the cache is bypassed
// entirely and create's output is left at its own temp path. In
// cacheRefresh mode any existing entry is deleted before create runs.
// Concurrent calls for the same key within this process are serialized by
// a per-key lock, so outside noCache and cacheRefresh mode the creator runs
// at most once per key per process.
func (m *Manager) GetOrCreate(key Key, name, ext string, create Creator) (string, error) {
	if m.noCache {
		tmp, err := os.CreateTemp("", "scenecast-nocache-*."+ext)
		if err != nil {
			return "", &errs.CacheError{Op: "create", Err: err}
		}
		tmpPath := tmp.Name()
		tmp.Close()
		os.Remove(tmpPath)
		written, err := create(tmpPath)
		if err != nil {
			return "", &errs.CacheError{Op: "create", Err: err}
		}
		return written, nil
	}

	hash := key.Hash()
	finalPath := m.entryPath(name, ext, hash)

	if m.refresh {
		os.Remove(finalPath)
		m.hot.Remove(hash)
	}

	lock := m.lockFor(finalPath)
	lock.Lock()
	defer lock.Unlock()

	if !m.refresh {
		if _, err := os.Stat(finalPath); err == nil {
			m.touch(finalPath)
			m.hot.Add(hash, finalPath)
			return finalPath, nil
		}
	}

	m.markActive(finalPath)
	defer m.unmarkActive(finalPath)

	written, err := create(finalPath)
	if err != nil {
		return "", &errs.CacheError{Op: "create", Key: hash, Err: err}
	}
	if written != finalPath {
		if err := m.relocate(written, finalPath); err != nil {
			return "", &errs.CacheError{Op: "create", Key: hash, Err: err}
		}
	}

	m.hot.Add(hash, finalPath)
	m.evict()
	return finalPath, nil
}

func (m *Manager) lockFor(path string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[path]
	if !ok {
		l = &sync.Mutex{}
		m.locks[path] = l
	}
	return l
}

func (m *Manager) markActive(path string) {
	m.activeMu.Lock()
	m.active[path] = true
	m.activeMu.Unlock()
}

func (m *Manager) unmarkActive(path string) {
	m.activeMu.Lock()
	delete(m.active, path)
	m.activeMu.Unlock()
}

func (m *Manager) isActive(path string) bool {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()
	return m.active[path]
}

// touch bumps path's mtime to now. The cache has no portable way to read
// real atime (NOATIME-mounted volumes report a stale value), so mtime
// doubles as the access clock: every cache hit re-stamps it.
func (m *Manager) touch(path string) {
	now := time.Now()
	_ = os.Chtimes(path, now, now)
}

func (m *Manager) copyIn(src, dest string) error {
	tmp := dest + ".tmp"
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// relocate moves src to dest, falling back to copy+remove across devices.
func (m *Manager) relocate(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := m.copyIn(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}
