package cache

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

type entryInfo struct {
	path  string
	mtime time.Time
	size  int64
}

// evict runs on every cache mutation: first drop entries older than ttl,
// then if the remaining total exceeds maxSizeBytes delete oldest-mtime
// first until within budget. Entries currently being written (tracked via
// markActive/unmarkActive) are never touched.
func (m *Manager) evict() {
	entries, err := m.listEntries()
	if err != nil {
		return
	}

	if m.ttl > 0 {
		cutoff := time.Now().Add(-m.ttl)
		kept := entries[:0]
		for _, e := range entries {
			if e.mtime.Before(cutoff) && !m.isActive(e.path) {
				os.Remove(e.path)
				continue
			}
			kept = append(kept, e)
		}
		entries = kept
	}

	if m.maxSizeBytes <= 0 {
		return
	}
	var total int64
	for _, e := range entries {
		total += e.size
	}
	if total <= m.maxSizeBytes {
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime.Before(entries[j].mtime) })
	for _, e := range entries {
		if total <= m.maxSizeBytes {
			break
		}
		if m.isActive(e.path) {
			continue
		}
		if err := os.Remove(e.path); err == nil {
			total -= e.size
		}
	}
}

func (m *Manager) listEntries() ([]entryInfo, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	entries := make([]entryInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || de.Name() == hintFileName {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entryInfo{
			path:  filepath.Join(m.dir, de.Name()),
			mtime: info.ModTime(),
			size:  info.Size(),
		})
	}
	return entries, nil
}
