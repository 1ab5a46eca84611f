package index

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/quiet/internal/checksum"
	"github.com/starford/quiet/internal/models"
	"github.com/starford/quiet/internal/parser"
	"github.com/starford/quiet/internal/render"
	"github.com/starford/quiet/internal/storage"
)

// Header keys understood by the builder.
const (
	HeaderTitle  = "title"
	HeaderSlug   = "slug"
	HeaderCreate = "create"
	HeaderUpdate = "update"
	HeaderDraft  = "draft"
)

// Builder turns a content file into a post.
type Builder interface {
	Build(path string) (*models.Post, error)
}

// ParseError reports why a content file could not be turned into a post.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("index: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PostBuilder reads, parses and renders posts from a storage.Provider.
type PostBuilder struct {
	store    storage.Provider
	renderer render.Renderer
	loc      *time.Location
}

// NewPostBuilder creates a builder that interprets header dates in local time.
func NewPostBuilder(store storage.Provider, renderer render.Renderer) *PostBuilder {
	return &PostBuilder{store: store, renderer: renderer, loc: time.Local}
}

// Build implements Builder. Every failure is a *ParseError.
func (b *PostBuilder) Build(path string) (*models.Post, error) {
	post, err := b.build(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return post, nil
}

func (b *PostBuilder) build(path string) (*models.Post, error) {
	rc, err := b.store.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	res, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	content, err := b.renderer.Render(res.Body)
	if err != nil {
		return nil, err
	}
	cats, err := b.store.Categories(path)
	if err != nil {
		return nil, err
	}
	fsCreated, fsModified, err := b.store.Times(path)
	if err != nil {
		return nil, err
	}
	created, updated, err := resolveTimes(res, fsCreated, fsModified, b.loc)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	title, ok := res.Get(HeaderTitle)
	if !ok || title == "" {
		title = name
	}
	slug, _ := res.Get(HeaderSlug)

	return &models.Post{
		Path:       filepath.Clean(path),
		Name:       name,
		Title:      title,
		Slug:       slug,
		Categories: cats,
		CreatedAt:  created,
		UpdatedAt:  updated,
		Draft:      res.Bool(HeaderDraft),
		Content:    content,
		Checksum:   checksum.Sum(data),
	}, nil
}

// resolveTimes picks the create and update times from the header, falling
// back to the earlier and later of the file times, and orders the pair so
// that created <= updated.
func resolveTimes(res *parser.Result, fsCreated, fsModified time.Time, loc *time.Location) (time.Time, time.Time, error) {
	create := minTime(fsCreated, fsModified)
	if v, ok := res.Get(HeaderCreate); ok && v != "" {
		t, err := parser.ParseTime(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", HeaderCreate, err)
		}
		create = t
	}
	update := maxTime(fsCreated, fsModified)
	if v, ok := res.Get(HeaderUpdate); ok && v != "" {
		t, err := parser.ParseTime(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", HeaderUpdate, err)
		}
		update = t
	}
	return minTime(create, update), maxTime(create, update), nil
}

func minTime(a, b time.Time) time.Time {
	if a.After(b) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

var _ Builder = (*PostBuilder)(nil)
