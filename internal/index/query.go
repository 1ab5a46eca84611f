package index

import (
	"strings"

	"github.com/starford/quiet/internal/models"
)

// eligible reports whether p may appear in query results.
func (ix *Index) eligible(p *models.Post) bool {
	return p.Visible() && !p.HasAnyCategory(ix.hidden)
}

// Count returns the number of eligible posts.
func (ix *Index) Count() int {
	n := 0
	for _, p := range ix.snapshot() {
		if ix.eligible(p) {
			n++
		}
	}
	return n
}

// Page returns up to limit eligible posts after skipping offset of them,
// together with the total number of eligible posts.
func (ix *Index) Page(offset, limit int) ([]*models.Post, int) {
	if offset < 0 {
		offset = 0
	}
	var out []*models.Post
	total := 0
	for _, p := range ix.snapshot() {
		if !ix.eligible(p) {
			continue
		}
		if total >= offset && len(out) < limit {
			out = append(out, p)
		}
		total++
	}
	return out, total
}

// FindByURI returns the newest eligible post whose date or category URI is uri.
func (ix *Index) FindByURI(uri string) *models.Post {
	for _, p := range ix.snapshot() {
		if ix.eligible(p) && p.MatchURI(uri) {
			return p
		}
	}
	return nil
}

// FindByCategory returns the eligible posts whose category path is exactly cats.
func (ix *Index) FindByCategory(cats []string) []*models.Post {
	var out []*models.Post
	for _, p := range ix.snapshot() {
		if ix.eligible(p) && p.InCategory(cats) {
			out = append(out, p)
		}
	}
	return out
}

// FindChildren returns the immediate subcategories of cats that contain at
// least one eligible post, in order of first appearance.
func (ix *Index) FindChildren(cats []string) []models.Category {
	return childrenOf(ix.snapshot(), ix.eligible, cats)
}

func childrenOf(posts []*models.Post, keep func(*models.Post) bool, cats []string) []models.Category {
	seen := make(map[string]struct{})
	var out []models.Category
	for _, p := range posts {
		if !keep(p) || !p.Under(cats) {
			continue
		}
		child := p.Categories[:len(cats)+1]
		key := strings.Join(child, "/")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Category{
			Name: child[len(child)-1],
			URL:  models.CategoryURL(child),
		})
	}
	return out
}

// CategoryNode is one category in the tree returned by Tree.
type CategoryNode struct {
	models.Category
	Path     []string
	Posts    int
	Children []CategoryNode
}

// Tree returns the full category hierarchy of eligible posts, computed from
// one snapshot. The root node has an empty path and counts uncategorised posts.
func (ix *Index) Tree() CategoryNode {
	posts := ix.snapshot()
	return ix.node(posts, nil, models.Category{Name: "/", URL: models.CategoryPrefix})
}

func (ix *Index) node(posts []*models.Post, cats []string, c models.Category) CategoryNode {
	n := CategoryNode{Category: c, Path: cats}
	for _, p := range posts {
		if ix.eligible(p) && p.InCategory(cats) {
			n.Posts++
		}
	}
	for _, child := range childrenOf(posts, ix.eligible, cats) {
		sub := append(append([]string{}, cats...), child.Name)
		n.Children = append(n.Children, ix.node(posts, sub, child))
	}
	return n
}
