package pdf

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/observability"
)

func newTestRasterizer(engine domain.PDFEngine) *Rasterizer {
	return NewRasterizer(engine, domain.NewMessages("en"), observability.Nop(), DefaultOptions())
}

func pdfDoc() domain.UploadedDocument {
	return domain.DocumentFromBytes("doc.pdf", "application/pdf", []byte("%PDF-1.4"))
}

func collect(events *[]domain.StreamEvent) func(domain.StreamEvent) {
	return func(ev domain.StreamEvent) { *events = append(*events, ev) }
}

func TestRasterizeThreePagesInOrder(t *testing.T) {
	engine := &stubEngine{pages: 3}
	r := newTestRasterizer(engine)

	var events []domain.StreamEvent
	raster, err := r.Rasterize(context.Background(), pdfDoc(), collect(&events))
	require.NoError(t, err)

	require.Len(t, raster.Pages, 3)
	for i, p := range raster.Pages {
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, "image/jpeg", p.Payload.MimeType)
		assert.NotEmpty(t, p.Payload.Data)
	}
	assert.Equal(t, "data:image/jpeg;base64,"+raster.Pages[0].Payload.Data, raster.Preview)
	assert.NotEqual(t, raster.Pages[0].Payload.Data, raster.Pages[1].Payload.Data)
	assert.Len(t, raster.Payloads(), 3)

	var progress []string
	for _, ev := range events {
		if ev.Type == domain.EventPageProcessing {
			progress = append(progress, ev.Payload.(string))
		}
	}
	assert.Equal(t, []string{
		"processing page 1 of 3...",
		"processing page 2 of 3...",
		"processing page 3 of 3...",
	}, progress)

	assert.Equal(t, []int{1, 2, 3}, engine.rendered)
	assert.False(t, engine.overlap)
}

func TestRasterizePreviewPublishedOnFirstPageOnly(t *testing.T) {
	r := newTestRasterizer(&stubEngine{pages: 2})

	var events []domain.StreamEvent
	_, err := r.Rasterize(context.Background(), pdfDoc(), collect(&events))
	require.NoError(t, err)

	previews := 0
	for _, ev := range events {
		if ev.Type == domain.EventPreview {
			previews++
			assert.Equal(t, 1, ev.PageNumber)
		}
	}
	assert.Equal(t, 1, previews)
}

func TestRasterizeEmptyDocument(t *testing.T) {
	r := newTestRasterizer(&stubEngine{pages: 0})

	raster, err := r.Rasterize(context.Background(), pdfDoc(), nil)
	require.NoError(t, err)
	assert.Empty(t, raster.Pages)
	assert.Empty(t, raster.Preview)
}

func TestRasterizeFailures(t *testing.T) {
	unreadable := domain.NewDocument("x.pdf", "application/pdf", 1, func() (io.ReadCloser, error) {
		return nil, errors.New("disk gone")
	})

	tests := []struct {
		name    string
		engine  *stubEngine
		doc     domain.UploadedDocument
		errType domain.ErrorType
		message string
	}{
		{"engine load", &stubEngine{pages: 1, loadErr: errors.New("no mupdf")}, pdfDoc(), domain.ErrorTypeEngine, "Could not load or run"},
		{"unreadable", &stubEngine{pages: 1}, unreadable, domain.ErrorTypeRead, "Could not read the file."},
		{"corrupt", &stubEngine{openErr: errors.New("no xref")}, pdfDoc(), domain.ErrorTypeDecode, "may be corrupt"},
		{"page render", &stubEngine{pages: 3, failPage: 2}, pdfDoc(), domain.ErrorTypeRender, "page 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster, err := newTestRasterizer(tt.engine).Rasterize(context.Background(), tt.doc, nil)
			require.Error(t, err)
			assert.Nil(t, raster)
			assert.True(t, domain.IsType(err, tt.errType), "got %v", err)
			assert.True(t, strings.Contains(domain.UserMessage(err, ""), tt.message), domain.UserMessage(err, ""))
		})
	}
}

func TestRasterizeStopsAfterFailedPage(t *testing.T) {
	engine := &stubEngine{pages: 4, failPage: 2}
	_, err := newTestRasterizer(engine).Rasterize(context.Background(), pdfDoc(), nil)
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, engine.rendered)
}

func TestRasterizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newTestRasterizer(&stubEngine{pages: 3})

	_, err := r.Rasterize(ctx, pdfDoc(), func(ev domain.StreamEvent) {
		if ev.Type == domain.EventPageComplete && ev.PageNumber == 1 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, domain.IsType(err, domain.ErrorTypeCancelled))
	assert.Equal(t, "Processing was cancelled before it finished.", domain.UserMessage(err, ""))
}

func TestRasterizeCancelledDuringEngineLoad(t *testing.T) {
	engine := &stubEngine{pages: 1, loadGate: make(chan struct{})}
	defer close(engine.loadGate)
	r := newTestRasterizer(engine)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := r.Rasterize(ctx, pdfDoc(), nil)
		errs <- err
	}()

	require.Eventually(t, func() bool { return engine.loadCalls.Load() == 1 }, timeout, tick)
	cancel()

	select {
	case err := <-errs:
		assert.True(t, domain.IsType(err, domain.ErrorTypeCancelled))
		assert.False(t, domain.IsType(err, domain.ErrorTypeEngine))
	case <-time.After(timeout):
		t.Fatal("rasterize did not return after cancellation")
	}
}

func TestEngineLoadedOnceAcrossDocuments(t *testing.T) {
	engine := &stubEngine{pages: 1}
	r := newTestRasterizer(engine)

	for i := 0; i < 3; i++ {
		_, err := r.Rasterize(context.Background(), pdfDoc(), nil)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, engine.loadCalls.Load())
}

func TestLatchSharesInFlightInit(t *testing.T) {
	engine := &stubEngine{loadGate: make(chan struct{})}
	latch := NewLatch(engine.Load)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- latch.Ensure(context.Background())
		}()
	}

	// Let the first caller enter Load, then release everybody.
	require.Eventually(t, func() bool { return engine.loadCalls.Load() == 1 }, timeout, tick)
	close(engine.loadGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, latch.Ready())
	assert.EqualValues(t, 1, engine.loadCalls.Load())
	assert.NoError(t, latch.Ensure(context.Background()))
}

func TestLatchRetriesAfterFailure(t *testing.T) {
	calls := 0
	latch := NewLatch(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("first load fails")
		}
		return nil
	})

	assert.Error(t, latch.Ensure(context.Background()))
	assert.False(t, latch.Ready())
	assert.NoError(t, latch.Ensure(context.Background()))
	assert.NoError(t, latch.Ensure(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestLatchCancelledCallerDoesNotFailOthers(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	latch := NewLatch(func(ctx context.Context) error {
		calls.Add(1)
		select {
		case <-gate:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() { errA <- latch.Ensure(ctxA) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, timeout, tick)

	errB := make(chan error, 1)
	go func() { errB <- latch.Ensure(context.Background()) }()

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(timeout):
		t.Fatal("cancelled caller kept waiting")
	}

	close(gate)
	select {
	case err := <-errB:
		assert.NoError(t, err)
	case <-time.After(timeout):
		t.Fatal("live caller never returned")
	}
	assert.True(t, latch.Ready())
	assert.EqualValues(t, 1, calls.Load())
}
