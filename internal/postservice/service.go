// Package postservice exposes the read side of the content index to the
// HTTP API and the MCP server.
package postservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/quiet/internal/apperr"
	"github.com/starford/quiet/internal/index"
	"github.com/starford/quiet/internal/models"
)

// DefaultPageSize is the number of posts per list page.
const DefaultPageSize = 10

// PostMeta is a lightweight item in a list response.
type PostMeta struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	CategoryURL string            `json:"category_url"`
	Categories  []models.Category `json:"categories"`
	Checksum    string            `json:"checksum"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PostDetail is the full representation of a post.
type PostDetail struct {
	PostMeta
	Content string `json:"content"`
}

// PageView is one page of the post list.
type PageView struct {
	Posts      []PostMeta `json:"posts"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int        `json:"total"`
}

// CategoryView is the content of one category page.
type CategoryView struct {
	Name        string            `json:"name"`
	Breadcrumbs []models.Category `json:"breadcrumbs"`
	Posts       []PostMeta        `json:"posts"`
	Children    []models.Category `json:"children"`
}

// Querier is the part of the content index the service reads from.
type Querier interface {
	Page(offset, limit int) ([]*models.Post, int)
	FindByURI(uri string) *models.Post
	FindByCategory(cats []string) []*models.Post
	FindChildren(cats []string) []models.Category
	Tree() index.CategoryNode
}

// Service answers read queries against the content index.
type Service struct {
	index    Querier
	pageSize int
}

// NewService creates a service with the given page size. A non-positive
// size falls back to DefaultPageSize.
func NewService(ix Querier, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{index: ix, pageSize: pageSize}
}

// ListPage returns the 1-based page n of the post list, newest first.
// A page past the end is empty but still reports the totals.
func (s *Service) ListPage(_ context.Context, n int) (*PageView, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: page %d", apperr.ErrInvalidArgument, n)
	}
	posts, total := s.index.Page((n-1)*s.pageSize, s.pageSize)
	return &PageView{
		Posts:      metas(posts),
		Page:       n,
		TotalPages: totalPages(total, s.pageSize),
		Total:      total,
	}, nil
}

// GetByURI returns the post published at uri, either its date URI or its
// category URI.
func (s *Service) GetByURI(_ context.Context, uri string) (*PostDetail, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty uri", apperr.ErrInvalidArgument)
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	p := s.index.FindByURI(uri)
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return &PostDetail{PostMeta: meta(p), Content: p.Content}, nil
}

// Category returns the posts and subcategories of the category path cats.
// The empty path is the root: uncategorised posts and top-level categories.
// A non-root category with neither posts nor children does not exist.
func (s *Service) Category(_ context.Context, cats []string) (*CategoryView, error) {
	posts := s.index.FindByCategory(cats)
	children := s.index.FindChildren(cats)
	if len(cats) > 0 && len(posts) == 0 && len(children) == 0 {
		return nil, apperr.ErrNotFound
	}
	name := "/"
	if len(cats) > 0 {
		name = cats[len(cats)-1]
	}
	return &CategoryView{
		Name:        name,
		Breadcrumbs: models.Breadcrumbs(cats),
		Posts:       metas(posts),
		Children:    nonNil(children),
	}, nil
}

// Tree returns the whole category hierarchy.
func (s *Service) Tree(_ context.Context) index.CategoryNode {
	return s.index.Tree()
}

// SplitCategory turns "a/b/" into [a b]. Empty segments are dropped.
func SplitCategory(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func totalPages(total, size int) int {
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

func meta(p *models.Post) PostMeta {
	return PostMeta{
		Title:       p.Title,
		URL:         p.DateURI(),
		CategoryURL: p.CategoryURI(),
		Categories:  models.Breadcrumbs(p.Categories),
		Checksum:    p.Checksum,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func metas(posts []*models.Post) []PostMeta {
	out := make([]PostMeta, len(posts))
	for i, p := range posts {
		out[i] = meta(p)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
