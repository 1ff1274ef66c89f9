package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/text-extractor/internal/domain"
)

// baseDPI is the resolution of a PDF user-space unit at scale 1.0.
const baseDPI = 72.0

// probePDF is a one-page blank document used to check that MuPDF is usable.
const probePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 72 72] >>\nendobj\nxref\n0 4\n0000000000 65535 f \n0000000009 00000 n \n0000000058 00000 n \n0000000115 00000 n \ntrailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n184\n%%EOF\n"

// FitzEngine implements domain.PDFEngine using go-fitz (MuPDF).
type FitzEngine struct{}

// NewFitzEngine creates a MuPDF-backed engine.
func NewFitzEngine() *FitzEngine {
	return &FitzEngine{}
}

// Load opens and renders a probe document so that a broken MuPDF installation
// is reported once, up front, instead of as a decode error on every upload.
func (e *FitzEngine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := fitz.NewFromMemory([]byte(probePDF))
	if err != nil {
		return fmt.Errorf("open probe document: %w", err)
	}
	defer doc.Close()

	if n := doc.NumPage(); n != 1 {
		return fmt.Errorf("probe document reports %d pages", n)
	}
	if _, err := doc.ImageDPI(0, baseDPI); err != nil {
		return fmt.Errorf("render probe page: %w", err)
	}
	return nil
}

// Open parses a PDF held in memory.
func (e *FitzEngine) Open(data []byte) (domain.PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage renders the 1-based page index; go-fitz numbers pages from 0.
func (d *fitzDocument) RenderPage(index int, scale float64) (image.Image, error) {
	if index < 1 || index > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", index, d.doc.NumPage())
	}
	return d.doc.ImageDPI(index-1, baseDPI*scale)
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
