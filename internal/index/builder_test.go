package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/quiet/internal/parser"
	"github.com/starford/quiet/internal/render"
	"github.com/starford/quiet/internal/storage"
	"github.com/starford/quiet/internal/testutil"
)

func testBuilder(t *testing.T) (string, *PostBuilder) {
	t.Helper()
	root := testutil.ContentRoot(t)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	b := NewPostBuilder(store, render.NewMarkdown())
	b.loc = time.UTC
	return root, b
}

// setTimes pins the file mtime; birth time stays whatever the FS reports.
func setTimes(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_Fields(t *testing.T) {
	root, b := testBuilder(t)
	p := testutil.WriteFile(t, root, "tech/go/post.md", testutil.Post("# Heading\ntext\n",
		`title: "Go Tips"`, "slug: go-tips", "create: 2023-01-05 10:00", "update: 2023-02-01"))

	got, err := b.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.Name != "post" || got.Title != "Go Tips" || got.Slug != "go-tips" {
		t.Errorf("name/title/slug = %q/%q/%q", got.Name, got.Title, got.Slug)
	}
	if strings.Join(got.Categories, "/") != "tech/go" {
		t.Errorf("categories = %v, want [tech go]", got.Categories)
	}
	if !got.CreatedAt.Equal(time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created = %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("updated = %v", got.UpdatedAt)
	}
	if got.Draft {
		t.Error("post should be visible by default")
	}
	if !strings.Contains(got.Content, `<h1 id="heading">Heading</h1>`) {
		t.Errorf("content = %q", got.Content)
	}
	if got.Checksum == "" || got.Path != p {
		t.Errorf("checksum/path = %q/%q", got.Checksum, got.Path)
	}
	if got.DateURI() != "/2023/01/05/go-tips.html" || got.CategoryURI() != "/tech/go/go-tips.html" {
		t.Errorf("uris = %q %q", got.DateURI(), got.CategoryURI())
	}
}

func TestBuild_Defaults(t *testing.T) {
	root, b := testBuilder(t)
	p := testutil.WriteFile(t, root, "plain.markdown", "just text\n")

	got, err := b.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.Title != "plain" || got.Slug != "" {
		t.Errorf("title/slug = %q/%q", got.Title, got.Slug)
	}
	if len(got.Categories) != 0 {
		t.Errorf("categories = %v", got.Categories)
	}
	if got.CreatedAt.After(got.UpdatedAt) {
		t.Errorf("created %v after updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestBuild_Draft(t *testing.T) {
	root, b := testBuilder(t)
	p := testutil.WriteFile(t, root, "d.md", testutil.Post("x", "draft: true"))
	got, err := b.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !got.Draft || got.Visible() {
		t.Error("draft header should hide the post")
	}
}

func TestBuild_TimestampInvariant(t *testing.T) {
	root, b := testBuilder(t)
	mod := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		header []string
	}{
		{"reversed", []string{"create: 2024-01-01", "update: 2020-01-01"}},
		{"create only far future", []string{"create: 2999-01-01"}},
		{"update only far past", []string{"update: 1990-01-01"}},
		{"neither", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testutil.WriteFile(t, root, strings.ReplaceAll(tc.name, " ", "_")+".md", testutil.Post("body", tc.header...))
			setTimes(t, p, mod)
			got, err := b.Build(p)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got.CreatedAt.After(got.UpdatedAt) {
				t.Errorf("created %v after updated %v", got.CreatedAt, got.UpdatedAt)
			}
		})
	}
}

func TestBuild_ReversedHeaderDatesSwap(t *testing.T) {
	root, b := testBuilder(t)
	p := testutil.WriteFile(t, root, "r.md", testutil.Post("x", "create: 2024-01-01", "update: 2020-01-01"))
	got, err := b.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.CreatedAt.Year() != 2020 || got.UpdatedAt.Year() != 2024 {
		t.Errorf("created/updated = %v/%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestBuild_Failures(t *testing.T) {
	root, b := testBuilder(t)
	cases := map[string]struct {
		content string
		is      error
	}{
		"malformed.md":   {testutil.Post("x", "title ok", "oops"), parser.ErrMalformedHeader},
		"bad-date.md":    {testutil.Post("x", "create: last tuesday"), parser.ErrBadDate},
		"unterminated.md": {"---\ntitle: a\n", parser.ErrUnterminatedHeader},
	}
	for name, tc := range cases {
		p := testutil.WriteFile(t, root, name, tc.content)
		_, err := b.Build(p)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: err = %v, want *ParseError", name, err)
		}
		if pe.Path != p {
			t.Errorf("%s: ParseError.Path = %q", name, pe.Path)
		}
		if !errors.Is(err, tc.is) {
			t.Errorf("%s: err = %v, want %v", name, err, tc.is)
		}
	}
}

func TestBuild_MissingAndOutsideRoot(t *testing.T) {
	root, b := testBuilder(t)
	if _, err := b.Build(filepath.Join(root, "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}

	outside := testutil.WriteFile(t, testutil.ContentRoot(t), "elsewhere.md", "x")
	_, err := b.Build(outside)
	if !errors.Is(err, storage.ErrOutsideRoot) {
		t.Errorf("err = %v, want ErrOutsideRoot", err)
	}
}
