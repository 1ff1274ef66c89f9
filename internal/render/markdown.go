// Package render turns raw generated text into displayable HTML.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown is a domain.MarkupParser backed by goldmark with GitHub-flavoured
// extensions. Raw HTML passes through so that math fragments survive parsing.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the markup parser.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Parse converts markdown text to HTML.
func (m *Markdown) Parse(text string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
