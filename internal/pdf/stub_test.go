package pdf

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spherical/text-extractor/internal/domain"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// stubEngine is an in-memory domain.PDFEngine for tests.
type stubEngine struct {
	pages     int
	failPage  int   // 1-based page that fails to render, 0 for none
	openErr   error // returned by Open
	loadErr   error
	loadCalls atomic.Int32
	loadGate  chan struct{} // when set, Load blocks until closed

	mu       sync.Mutex
	active   int // pages currently rendering
	overlap  bool
	rendered []int
}

func (e *stubEngine) Load(ctx context.Context) error {
	e.loadCalls.Add(1)
	if e.loadGate != nil {
		<-e.loadGate
	}
	return e.loadErr
}

func (e *stubEngine) Open(data []byte) (domain.PDFDocument, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &stubDocument{engine: e}, nil
}

type stubDocument struct {
	engine *stubEngine
	closed bool
}

func (d *stubDocument) PageCount() int { return d.engine.pages }

func (d *stubDocument) RenderPage(index int, scale float64) (image.Image, error) {
	e := d.engine
	e.mu.Lock()
	e.active++
	if e.active > 1 {
		e.overlap = true
	}
	e.rendered = append(e.rendered, index)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}()

	if index == e.failPage {
		return nil, errors.New("broken content stream")
	}

	img := image.NewRGBA(image.Rect(0, 0, int(10*scale), int(10*scale)))
	// Shade each page differently so encoded payloads differ.
	shade := uint8(index * 40)
	for x := 0; x < img.Bounds().Dx(); x++ {
		for y := 0; y < img.Bounds().Dy(); y++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	return img, nil
}

func (d *stubDocument) Close() error {
	d.closed = true
	return nil
}
