// Package index keeps an in-memory, query-ready collection of posts in sync
// with the content directory.
//
// The pieces are wired as
//
//	Watcher -> Queue -> Worker -> Builder -> Index
//
// The Worker is the only writer of an Index. Readers never lock: every query
// works on an immutable snapshot of the post list, so a single call always
// sees one consistent version. A changed file is reparsed before its old
// entry is dropped, so the swap replaces it without a gap; a file that no
// longer parses simply disappears until its next change.
package index

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/quiet/internal/models"
)

// Index is the sorted (newest first) in-memory post collection.
type Index struct {
	mu     sync.Mutex // serialises writers
	posts  atomic.Pointer[[]*models.Post]
	hidden map[string]struct{}
}

// NewIndex creates an empty index. Posts under any of the hidden category
// names are stored but never returned by queries.
func NewIndex(hidden []string) *Index {
	ix := &Index{hidden: make(map[string]struct{}, len(hidden))}
	for _, h := range hidden {
		if h = strings.TrimSpace(h); h != "" {
			ix.hidden[h] = struct{}{}
		}
	}
	empty := []*models.Post{}
	ix.posts.Store(&empty)
	return ix
}

func (ix *Index) snapshot() []*models.Post {
	return *ix.posts.Load()
}

// Replace removes every post stored at path or below it and, when post is
// non-nil, inserts post at its sorted position. The new list is published
// in one swap. It returns the paths of the removed posts.
func (ix *Index) Replace(path string, post *models.Post) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	path = filepath.Clean(path)
	old := ix.snapshot()
	next := make([]*models.Post, 0, len(old)+1)
	var removed []string
	for _, p := range old {
		if covers(path, p.Path) {
			removed = append(removed, p.Path)
			continue
		}
		next = append(next, p)
	}

	if post != nil {
		// descending CreatedAt; equal timestamps keep insertion order
		i := sort.Search(len(next), func(i int) bool {
			return next[i].CreatedAt.Before(post.CreatedAt)
		})
		next = slices.Insert(next, i, post)
	}

	ix.posts.Store(&next)
	return removed
}

// Get returns the post stored at path regardless of its visibility.
func (ix *Index) Get(path string) *models.Post {
	path = filepath.Clean(path)
	for _, p := range ix.snapshot() {
		if p.Path == path {
			return p
		}
	}
	return nil
}

// Len returns the number of stored posts, eligible or not.
func (ix *Index) Len() int {
	return len(ix.snapshot())
}

// covers reports whether p is dir itself or lies below it.
func covers(dir, p string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(os.PathSeparator))
}
