// Package models defines the domain types for Quiet.
package models

import (
	"slices"
	"strings"
	"time"
)

// dateURILayout is the yyyy/MM/dd segment of a post's date URI.
const dateURILayout = "2006/01/02"

// CategoryPrefix is the URL prefix of every category page.
const CategoryPrefix = "/category"

// Post represents one parsed content file under the content root.
type Post struct {
	Path       string    `json:"-"`
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug,omitempty"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Draft      bool      `json:"draft"`
	Content    string    `json:"-"`
	Checksum   string    `json:"checksum"`
}

// Key is the URL identifier of the post: the slug when set, the title otherwise.
func (p *Post) Key() string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.Title
}

// Visible reports whether the post may be listed.
func (p *Post) Visible() bool {
	return !p.Draft
}

// DateURI returns /yyyy/MM/dd/{key}.html.
func (p *Post) DateURI() string {
	return "/" + p.CreatedAt.Format(dateURILayout) + "/" + p.Key() + ".html"
}

// CategoryURI returns /{categories...}/{key}.html.
func (p *Post) CategoryURI() string {
	if len(p.Categories) == 0 {
		return "/" + p.Key() + ".html"
	}
	return "/" + strings.Join(p.Categories, "/") + "/" + p.Key() + ".html"
}

// MatchURI reports whether uri is one of the post's canonical URIs.
func (p *Post) MatchURI(uri string) bool {
	return p.DateURI() == uri || p.CategoryURI() == uri
}

// InCategory reports whether the post lives exactly in cats.
func (p *Post) InCategory(cats []string) bool {
	return slices.Equal(p.Categories, cats)
}

// Under reports whether the post is strictly nested below cats.
func (p *Post) Under(cats []string) bool {
	return len(p.Categories) > len(cats) && slices.Equal(p.Categories[:len(cats)], cats)
}

// HasAnyCategory reports whether any segment of the post's category path is in set.
func (p *Post) HasAnyCategory(set map[string]struct{}) bool {
	for _, c := range p.Categories {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}

// Category is a named category page.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CategoryURL returns the page URL of a category path.
func CategoryURL(cats []string) string {
	return CategoryPrefix + "/" + strings.Join(cats, "/")
}

// Breadcrumbs folds a category path into cumulative category links,
// e.g. [a b] -> (a, /category/a), (b, /category/a/b).
func Breadcrumbs(cats []string) []Category {
	out := make([]Category, 0, len(cats))
	var url strings.Builder
	url.WriteString(CategoryPrefix)
	for _, c := range cats {
		url.WriteString("/")
		url.WriteString(c)
		out = append(out, Category{Name: c, URL: url.String()})
	}
	return out
}
