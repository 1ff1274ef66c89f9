package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/text-extractor/internal/domain"
)

func TestHubStartsIdle(t *testing.T) {
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, &stubEngine{})

	s := f.hub.Snapshot()
	assert.Equal(t, domain.ModePDF, s.Mode)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Document)
	assert.False(t, s.Loading)
}

func TestSelectFileRejectsWrongTypeBeforePreprocessing(t *testing.T) {
	engine := &stubEngine{pages: 2}
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, engine)

	err := f.hub.SelectFile(context.Background(), pngDocument())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Zero(t, engine.openCount(), "no preprocessing after a rejected file")

	s := f.hub.Snapshot()
	assert.Equal(t, domain.ModePDF, s.Mode)
	assert.Equal(t, PhaseErrored, s.Phase)
	assert.Equal(t, "Please select a file of type application/pdf.", s.Error)
	assert.Nil(t, s.Document)
	assert.Empty(t, s.Payloads)
	assert.Empty(t, s.Preview)
	assert.False(t, s.Loading)
}

func TestSelectFileRejectionClearsPreviousDocument(t *testing.T) {
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, &stubEngine{pages: 2})
	require.NoError(t, f.hub.SelectFile(context.Background(), pdfDocument()))
	require.Equal(t, 2, f.hub.Snapshot().PageCount)

	require.Error(t, f.hub.SelectFile(context.Background(), pngDocument()))

	s := f.hub.Snapshot()
	assert.Zero(t, s.PageCount)
	assert.Empty(t, s.Preview)
	assert.NotEmpty(t, s.Error)
}

func TestSelectImage(t *testing.T) {
	f := newFixture(t, domain.ModeHandwriting, &stubGenerator{}, &stubEngine{})

	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	require.Len(t, s.Payloads, 1)
	assert.Equal(t, "image/png", s.Payloads[0].MimeType)
	assert.Equal(t, "data:image/png;base64,"+s.Payloads[0].Data, s.Preview)
	require.NotNil(t, s.Document)
	assert.Equal(t, "page.png", s.Document.Name)
	assert.False(t, s.Loading)
}

func TestSelectThreePagePDFThenExtract(t *testing.T) {
	gen := &stubGenerator{text: "# Combined\n\nAll pages."}
	f := newFixture(t, domain.ModePDF, gen, &stubEngine{pages: 3})

	require.NoError(t, f.hub.SelectFile(context.Background(), pdfDocument()))

	assert.Equal(t, []string{
		"processing page 1 of 3...",
		"processing page 2 of 3...",
		"processing page 3 of 3...",
	}, f.progress())

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, 3, s.PageCount)
	assert.Equal(t, "data:image/jpeg;base64,"+s.Payloads[0].Data, s.Preview)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Progress)

	ran, err := f.hub.Extract(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)

	calls := gen.calls()
	require.Len(t, calls, 1)
	req := calls[0]
	assert.Equal(t, f.msgs.Get(domain.MsgPromptMultiImage), req.Prompt)
	assert.Contains(t, req.Prompt, "combine pages in order into one coherent document")
	assert.NotEqual(t, f.msgs.Get(domain.MsgPromptSingleImage), req.Prompt)
	assert.Equal(t, f.msgs.Get(domain.MsgInstrPDF), req.SystemInstruction)
	assert.Equal(t, s.Payloads, req.Images)
	assert.False(t, req.Search)

	s = f.hub.Snapshot()
	assert.Equal(t, PhaseDone, s.Phase)
	require.NotNil(t, s.Result)
	assert.Contains(t, s.Result.HTML, "<h1>Combined</h1>")
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
}

func TestExtractSingleImageUsesSingleImageWording(t *testing.T) {
	gen := &stubGenerator{text: "text"}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	_, err := f.hub.Extract(context.Background())
	require.NoError(t, err)

	req := gen.calls()[0]
	assert.Equal(t, f.msgs.Get(domain.MsgPromptSingleImage), req.Prompt)
	assert.Equal(t, f.msgs.Get(domain.MsgInstrHandwriting), req.SystemInstruction)
	assert.Len(t, req.Images, 1)
}

func TestEmptyPDFRefusesExtraction(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	f := newFixture(t, domain.ModePDF, gen, &stubEngine{pages: 0})

	require.NoError(t, f.hub.SelectFile(context.Background(), pdfDocument()))
	before := f.hub.Snapshot()
	assert.Zero(t, before.PageCount)

	ran, err := f.hub.Extract(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, gen.calls())
	assert.Equal(t, before, f.hub.Snapshot())
}

func TestCorruptPDFLeavesNoPartialState(t *testing.T) {
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, &stubEngine{openErr: errUpstream})

	err := f.hub.SelectFile(context.Background(), pdfDocument())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeDecode))

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseErrored, s.Phase)
	assert.Empty(t, s.Payloads)
	assert.Empty(t, s.Preview)
	assert.False(t, s.Loading)
	assert.Contains(t, s.Error, "corrupt")
}

func TestExtractNoOpWithoutPayloads(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	before := f.hub.Snapshot()

	ran, err := f.hub.Extract(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, gen.calls())
	assert.Equal(t, before, f.hub.Snapshot())
}

func TestExtractNoOpForUnsupportedMode(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	f := newFixture(t, domain.ModeAudio, gen, &stubEngine{})
	doc := domain.DocumentFromBytes("talk.mp3", "audio/mpeg", []byte("ID3"))

	require.NoError(t, f.hub.SelectFile(context.Background(), doc))
	before := f.hub.Snapshot()
	assert.Equal(t, PhaseFileSelected, before.Phase)

	ran, err := f.hub.Extract(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, gen.calls())
	assert.Equal(t, before, f.hub.Snapshot())
}

func TestExtractNoOpWhenConfigMissing(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{}, withConfigMissing())
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	ran, err := f.hub.Extract(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, gen.calls())
	assert.True(t, f.hub.Snapshot().ConfigMissing)
}

func TestExtractNoOpWhileInFlight(t *testing.T) {
	gen := &stubGenerator{text: "done", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	first := make(chan bool, 1)
	go func() {
		ran, _ := f.hub.Extract(context.Background())
		first <- ran
	}()
	<-gen.started

	inFlight := f.hub.Snapshot()
	assert.True(t, inFlight.Loading)
	assert.Equal(t, PhaseExtracting, inFlight.Phase)
	assert.Equal(t, "Sending data to the AI...", inFlight.Progress)

	ran, err := f.hub.Extract(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, inFlight, f.hub.Snapshot())

	close(gen.gate)
	assert.True(t, <-first)
	assert.Len(t, gen.calls(), 1)
	assert.False(t, f.hub.Snapshot().Loading)
}

func TestProviderFailure(t *testing.T) {
	gen := &stubGenerator{err: domain.ProviderError("API returned status 503", errUpstream)}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	ran, err := f.hub.Extract(context.Background())
	assert.True(t, ran)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstream)

	s := f.hub.Snapshot()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Result)
	assert.Equal(t, f.msgs.Get(domain.MsgProviderFailed), s.Error)
	assert.Equal(t, PhaseErrored, s.Phase)
}

func TestModeSwitchDuringRasterizationResets(t *testing.T) {
	engine := &stubEngine{pages: 3, blockAt: 2, gate: make(chan struct{}), reached: make(chan struct{}, 1)}
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, engine)

	done := make(chan error, 1)
	go func() { done <- f.hub.SelectFile(context.Background(), pdfDocument()) }()
	<-engine.reached

	mid := f.hub.Snapshot()
	assert.Equal(t, PhaseRasterizing, mid.Phase)
	assert.True(t, mid.Loading)
	assert.NotEmpty(t, mid.Preview, "page 1 preview is published early")

	f.hub.SetMode(domain.ModeHandwriting)
	close(engine.gate)
	require.NoError(t, <-done)

	s := f.hub.Snapshot()
	assert.Equal(t, domain.ModeHandwriting, s.Mode)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Document)
	assert.Empty(t, s.Payloads)
	assert.Empty(t, s.Preview)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Progress)
}

func TestNewFileDuringRasterizationResets(t *testing.T) {
	engine := &stubEngine{pages: 3, blockAt: 3, gate: make(chan struct{}), reached: make(chan struct{}, 1)}
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, engine)

	done := make(chan error, 1)
	go func() { done <- f.hub.SelectFile(context.Background(), pdfDocument()) }()
	<-engine.reached

	// The replacement is rejected, so nothing from either document may remain.
	require.Error(t, f.hub.SelectFile(context.Background(), pngDocument()))
	close(engine.gate)
	require.NoError(t, <-done)

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseErrored, s.Phase)
	assert.Empty(t, s.Payloads)
	assert.Empty(t, s.Preview)
	assert.False(t, s.Loading)
}

func TestStaleExtractionIsDiscarded(t *testing.T) {
	gen := &stubGenerator{text: "late", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	done := make(chan bool, 1)
	go func() {
		ran, _ := f.hub.Extract(context.Background())
		done <- ran
	}()
	<-gen.started

	f.hub.SetMode(domain.ModePDF)
	close(gen.gate)
	assert.True(t, <-done)

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Result)
	assert.False(t, s.Loading)
}

func TestResubmitAfterFailure(t *testing.T) {
	gen := &stubGenerator{err: errUpstream}
	f := newFixture(t, domain.ModeHandwriting, gen, &stubEngine{})
	require.NoError(t, f.hub.SelectFile(context.Background(), pngDocument()))

	_, err := f.hub.Extract(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, f.hub.Snapshot().PageCount)

	gen.err = nil
	gen.text = "second try"
	ran, err := f.hub.Extract(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Len(t, gen.calls(), 2)

	s := f.hub.Snapshot()
	assert.Equal(t, PhaseDone, s.Phase)
	assert.Empty(t, s.Error)
	assert.Contains(t, s.Result.HTML, "second try")
}

func TestResetKeepsMode(t *testing.T) {
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, &stubEngine{pages: 1})
	require.NoError(t, f.hub.SelectFile(context.Background(), pdfDocument()))
	v := f.hub.Snapshot().Version

	f.hub.Reset()

	s := f.hub.Snapshot()
	assert.Equal(t, domain.ModePDF, s.Mode)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Zero(t, s.PageCount)
	assert.Greater(t, s.Version, v)
}

func TestSetModePanicsOnUnknownMode(t *testing.T) {
	f := newFixture(t, domain.ModePDF, &stubGenerator{}, &stubEngine{})
	assert.Panics(t, func() { f.hub.SetMode("hologram") })
}
