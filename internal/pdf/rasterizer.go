// Package pdf rasterizes PDF documents into ordered page images.
package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"time"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/observability"
)

const pageMIME = "image/jpeg"

// Options controls rasterization output.
type Options struct {
	Scale       float64 // 1.0 renders at 72 DPI
	JPEGQuality int
}

// DefaultOptions matches the viewer scale used for previews.
func DefaultOptions() Options {
	return Options{Scale: 1.5, JPEGQuality: 85}
}

// Raster is the complete, ordered result of rasterizing one document.
type Raster struct {
	Pages   []domain.RasterPage
	Preview string // data URL of page 1, empty for a document without pages
}

// Payloads returns the page payloads in page order.
func (r *Raster) Payloads() []domain.Payload {
	out := make([]domain.Payload, 0, len(r.Pages))
	for _, p := range r.Pages {
		out = append(out, p.Payload)
	}
	return out
}

// Rasterizer converts PDF documents to JPEG page payloads. The engine is
// loaded lazily through a latch shared by every caller of this Rasterizer.
type Rasterizer struct {
	engine domain.PDFEngine
	latch  *Latch
	opts   Options
	msgs   *domain.Messages
	logger *observability.Logger
}

// NewRasterizer creates a rasterizer around engine.
func NewRasterizer(engine domain.PDFEngine, msgs *domain.Messages, logger *observability.Logger, opts Options) *Rasterizer {
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultOptions().JPEGQuality
	}
	return &Rasterizer{
		engine: engine,
		latch:  NewLatch(engine.Load),
		opts:   opts,
		msgs:   msgs,
		logger: logger.WithComponent("pdf"),
	}
}

// Rasterize renders every page of doc strictly in ascending order. Progress is
// reported through emit, which may be nil. The result is all-or-nothing: on any
// failure no pages are returned.
func (r *Rasterizer) Rasterize(ctx context.Context, doc domain.UploadedDocument, emit func(domain.StreamEvent)) (*Raster, error) {
	if emit == nil {
		emit = func(domain.StreamEvent) {}
	}

	emit(domain.StreamEvent{
		Type:      domain.EventEngineLoading,
		Payload:   r.msgs.Get(domain.MsgPreparingPDF),
		Timestamp: time.Now(),
	})
	if err := r.latch.Ensure(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, r.cancelled(ctx)
		}
		r.logger.Error().Err(err).Msg("PDF engine failed to load")
		return nil, domain.EngineError(r.msgs.Get(domain.MsgEngineFailed), err)
	}

	data, err := doc.ReadAll()
	if err != nil {
		r.logger.Error().Err(err).Str("document", doc.Name).Msg("Failed to read PDF")
		return nil, domain.ReadError(r.msgs.Get(domain.MsgReadFailed), err)
	}

	pdfDoc, err := r.engine.Open(data)
	if err != nil {
		r.logger.Error().Err(err).Str("document", doc.Name).Msg("Failed to open PDF")
		return nil, domain.DecodeError(r.msgs.Get(domain.MsgPDFDecodeFailed), err)
	}
	defer pdfDoc.Close()

	total := pdfDoc.PageCount()
	r.logger.Info().Str("document", doc.Name).Int("pages", total).Msg("Rasterizing PDF")

	emit(domain.StreamEvent{
		Type:       domain.EventStart,
		TotalPages: total,
		Timestamp:  time.Now(),
	})

	raster := &Raster{Pages: make([]domain.RasterPage, 0, total)}
	for i := 1; i <= total; i++ {
		if ctx.Err() != nil {
			return nil, r.cancelled(ctx)
		}

		emit(domain.StreamEvent{
			Type:       domain.EventPageProcessing,
			PageNumber: i,
			TotalPages: total,
			Payload:    r.msgs.Get(domain.MsgProcessingPage, i, total),
			Timestamp:  time.Now(),
		})

		encoded, err := r.renderPage(pdfDoc, i)
		if err != nil {
			r.logger.Error().Err(err).Int("page", i).Msg("Failed to render page")
			return nil, domain.RenderError(r.msgs.Get(domain.MsgPDFRenderFailed, i), err)
		}

		if i == 1 {
			raster.Preview = intake.DataURL(pageMIME, encoded)
			emit(domain.StreamEvent{
				Type:       domain.EventPreview,
				PageNumber: i,
				TotalPages: total,
				Payload:    raster.Preview,
				Timestamp:  time.Now(),
			})
		}

		raster.Pages = append(raster.Pages, domain.RasterPage{
			Index:   i,
			Payload: domain.Payload{MimeType: pageMIME, Data: encoded},
		})

		emit(domain.StreamEvent{
			Type:       domain.EventPageComplete,
			PageNumber: i,
			TotalPages: total,
			Timestamp:  time.Now(),
		})
	}

	emit(domain.StreamEvent{
		Type:       domain.EventComplete,
		TotalPages: total,
		Timestamp:  time.Now(),
	})

	return raster, nil
}

// renderPage rasterizes one page and returns it as base64 JPEG.
func (r *Rasterizer) renderPage(doc domain.PDFDocument, index int) (string, error) {
	img, err := doc.RenderPage(index, r.opts.Scale)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", index, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.opts.JPEGQuality}); err != nil {
		return "", fmt.Errorf("encode page %d as JPG: %w", index, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Rasterizer) cancelled(ctx context.Context) error {
	r.logger.Info().Err(ctx.Err()).Msg("Rasterization cancelled")
	return domain.CancelledError(r.msgs.Get(domain.MsgCancelled), ctx.Err())
}
