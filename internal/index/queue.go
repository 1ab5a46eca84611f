package index

import (
	"path/filepath"
	"sort"
	"sync"
)

// Queue is a concurrency-safe set of paths waiting to be reprocessed.
// Adding a path that is already pending is a no-op, so bursts of events for
// one file collapse into a single reprocessing.
type Queue struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[string]struct{})}
}

// Add marks path as changed.
func (q *Queue) Add(path string) {
	q.mu.Lock()
	q.pending[filepath.Clean(path)] = struct{}{}
	q.mu.Unlock()
}

// Len returns the number of pending paths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain removes and returns all pending paths in lexical order, which puts
// a directory ahead of its descendants.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	pending := q.pending
	q.pending = make(map[string]struct{}, len(pending))
	q.mu.Unlock()

	out := make([]string, 0, len(pending))
	for p := range pending {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
