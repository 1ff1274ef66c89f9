package domain

import (
	"context"
	"image"
)

// ContentGenerator is the external content-generation collaborator.
type ContentGenerator interface {
	// Generate answers a prompt, optionally with inline images, and returns the raw text.
	Generate(ctx context.Context, req ExtractionRequest) (string, error)

	// GenerateWithSearch answers a prompt with web search enabled and returns
	// the text together with any grounding sources.
	GenerateWithSearch(ctx context.Context, req ExtractionRequest) (*GroundedResponse, error)
}

// PDFEngine opens PDF documents for rasterization.
type PDFEngine interface {
	// Load prepares the engine. It is called at most once per successful load.
	Load(ctx context.Context) error

	// Open parses a PDF held in memory.
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument is an opened PDF.
type PDFDocument interface {
	PageCount() int

	// RenderPage rasterizes the 1-based page at the given scale (1.0 = 72 DPI).
	RenderPage(index int, scale float64) (image.Image, error)

	Close() error
}

// MarkupParser converts lightweight markup into HTML.
type MarkupParser interface {
	Parse(text string) (string, error)
}

// MathRenderer converts a math expression into an HTML fragment.
type MathRenderer interface {
	Render(expression string, displayMode bool) (string, error)
}
