// Package render converts markdown bodies to HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns a document body into its rendered form.
type Renderer interface {
	Render(src []byte) (string, error)
}

// Markdown renders CommonMark with tables, strikethrough and footnotes.
// Soft line breaks are rendered as <br />.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a goldmark-backed renderer.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Footnote,
			),
			goldmark.WithParserOptions(
				gmparser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
				html.WithUnsafe(),
			),
		),
	}
}

// Render implements Renderer.
func (m *Markdown) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	return buf.String(), nil
}

var _ Renderer = (*Markdown)(nil)
