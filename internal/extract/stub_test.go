package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
	"github.com/spherical/text-extractor/internal/pdf"
	"github.com/spherical/text-extractor/internal/render"
)

// stubGenerator records requests and answers with canned responses.
type stubGenerator struct {
	text     string
	err      error
	grounded *domain.GroundedResponse

	// gate, when set, blocks calls until closed; started is signalled on entry.
	gate    chan struct{}
	started chan struct{}

	mu       sync.Mutex
	requests []domain.ExtractionRequest
}

func (g *stubGenerator) record(req domain.ExtractionRequest) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.gate != nil {
		<-g.gate
	}
}

func (g *stubGenerator) Generate(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	g.record(req)
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func (g *stubGenerator) GenerateWithSearch(ctx context.Context, req domain.ExtractionRequest) (*domain.GroundedResponse, error) {
	g.record(req)
	if g.err != nil {
		return nil, g.err
	}
	if g.grounded != nil {
		return g.grounded, nil
	}
	return &domain.GroundedResponse{Text: g.text}, nil
}

func (g *stubGenerator) calls() []domain.ExtractionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.ExtractionRequest(nil), g.requests...)
}

// stubEngine serves documents with a fixed page count.
type stubEngine struct {
	pages   int
	openErr error

	// blockAt, when non-zero, makes that page wait on gate after signalling reached.
	blockAt int
	gate    chan struct{}
	reached chan struct{}

	mu     sync.Mutex
	opened int
}

func (e *stubEngine) Load(ctx context.Context) error { return nil }

func (e *stubEngine) Open(data []byte) (domain.PDFDocument, error) {
	e.mu.Lock()
	e.opened++
	e.mu.Unlock()
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &stubDocument{engine: e}, nil
}

func (e *stubEngine) openCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

type stubDocument struct{ engine *stubEngine }

func (d *stubDocument) PageCount() int { return d.engine.pages }

func (d *stubDocument) RenderPage(index int, scale float64) (image.Image, error) {
	if index == d.engine.blockAt {
		d.engine.reached <- struct{}{}
		<-d.engine.gate
	}
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(index * 50)
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	return img, nil
}

func (d *stubDocument) Close() error { return nil }

type fixture struct {
	hub       *Hub
	generator *stubGenerator
	engine    *stubEngine
	events    chan domain.StreamEvent
	msgs      *domain.Messages
}

type fixtureOption func(*Deps)

func withConfigMissing() fixtureOption {
	return func(d *Deps) { d.ConfigMissing = true }
}

func newFixture(t *testing.T, initial domain.ExtractionMode, gen *stubGenerator, engine *stubEngine, opts ...fixtureOption) *fixture {
	t.Helper()
	msgs := domain.NewMessages("en")
	logger := observability.Nop()
	events := make(chan domain.StreamEvent, 128)

	deps := Deps{
		Registry:     mode.NewRegistry(msgs),
		Validator:    intake.NewValidator(msgs),
		Images:       intake.NewImageEncoder(msgs),
		Rasterizer:   pdf.NewRasterizer(engine, msgs, logger, pdf.DefaultOptions()),
		Orchestrator: NewOrchestrator(gen, render.NewDefault(logger), msgs, logger),
		Messages:     msgs,
		Logger:       logger,
		Events:       events,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &fixture{
		hub:       NewHub(deps, initial),
		generator: gen,
		engine:    engine,
		events:    events,
		msgs:      msgs,
	}
}

// progress drains buffered events and returns page progress messages in order.
func (f *fixture) progress() []string {
	var out []string
	for {
		select {
		case ev := <-f.events:
			if ev.Type == domain.EventPageProcessing {
				out = append(out, ev.Payload.(string))
			}
		default:
			return out
		}
	}
}

func pdfDocument() domain.UploadedDocument {
	return domain.DocumentFromBytes("notes.pdf", "application/pdf", []byte("%PDF-1.7 stub"))
}

func pngDocument() domain.UploadedDocument {
	return domain.DocumentFromBytes("page.png", "image/png", []byte("\x89PNG\r\n\x1a\nstub"))
}

var errUpstream = errors.New("upstream 503")
