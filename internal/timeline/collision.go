package timeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// PathResolver avoids report files clobbering each other across repeated
// runs into the same output directory, adapted from the teacher's
// internal/naming.CollisionResolver (" - dupN" suffixing) from per-input
// collisions to per-run-output collisions: the "owner" here is a run id
// rather than an input file path.
type PathResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output path -> run id that claimed it
	counters map[string]int    // base output path -> next dup counter
}

// NewPathResolver creates a ready-to-use resolver.
func NewPathResolver() *PathResolver {
	return &PathResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final path to write for runID, handling
// collisions: if requestedPath is unclaimed or already owned by runID, it
// is returned as-is; otherwise a " - dupN" variant is generated.
func (r *PathResolver) Resolve(runID, requestedPath string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, exists := r.owners[requestedPath]
	if !exists || owner == runID {
		r.owners[requestedPath] = runID
		return requestedPath
	}

	dir := filepath.Dir(requestedPath)
	base := filepath.Base(requestedPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := r.counters[requestedPath]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := r.owners[candidate]
		if !cExists || cOwner == runID {
			r.counters[requestedPath] = counter + 1
			r.owners[candidate] = runID
			return candidate
		}
		counter++
	}
}
