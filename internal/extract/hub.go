package extract

import (
	"context"
	"sync"
	"time"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
	"github.com/spherical/text-extractor/internal/pdf"
)

// Phase is the position of a Hub in the extraction state machine.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseFileSelected Phase = "file_selected"
	PhaseRasterizing  Phase = "rasterizing"
	PhaseReady        Phase = "ready"
	PhaseExtracting   Phase = "extracting"
	PhaseDone         Phase = "done"
	PhaseErrored      Phase = "errored"
)

// Snapshot is a copy of a Hub's pipeline state.
type Snapshot struct {
	Mode          domain.ExtractionMode    `json:"mode"`
	Phase         Phase                    `json:"phase"`
	Document      *domain.DocumentInfo     `json:"document,omitempty"`
	Payloads      []domain.Payload         `json:"-"`
	PageCount     int                      `json:"pageCount"`
	Preview       string                   `json:"preview,omitempty"`
	Loading       bool                     `json:"loading"`
	Progress      string                   `json:"progress,omitempty"`
	Result        *domain.ExtractionResult `json:"result,omitempty"`
	Error         string                   `json:"error,omitempty"`
	ConfigMissing bool                     `json:"configMissing"`
	Version       uint64                   `json:"version"`
}

// Deps are the collaborators of a Hub.
type Deps struct {
	Registry      *mode.Registry
	Validator     *intake.Validator
	Images        *intake.ImageEncoder
	Rasterizer    *pdf.Rasterizer
	Orchestrator  *Orchestrator
	Messages      *domain.Messages
	Logger        *observability.Logger
	ConfigMissing bool

	// Events, when set, receives progress events. Sends never block.
	Events chan<- domain.StreamEvent
}

// Hub is the single owner of one user's extraction pipeline state. Every
// transition that changes the document or mode resets the whole state and
// bumps the version; asynchronous steps issued against an older version are
// discarded when they complete.
type Hub struct {
	deps   Deps
	logger *observability.Logger

	mu       sync.Mutex
	version  uint64
	mode     domain.ExtractionMode
	phase    Phase
	doc      *domain.UploadedDocument
	payloads []domain.Payload
	preview  string
	loading  bool
	progress string
	result   *domain.ExtractionResult
	errMsg   string
}

// NewHub creates a hub in the Idle phase with the given initial mode.
func NewHub(deps Deps, initial domain.ExtractionMode) *Hub {
	deps.Registry.ConfigOf(initial) // unknown modes are a programming error
	return &Hub{
		deps:   deps,
		logger: deps.Logger.WithComponent("hub"),
		mode:   initial,
		phase:  PhaseIdle,
	}
}

// SetMode switches the active mode and resets all document state.
func (h *Hub) SetMode(m domain.ExtractionMode) {
	cfg := h.deps.Registry.ConfigOf(m)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = cfg.Mode
	h.resetLocked()
	h.logger.Debug().Str("mode", string(m)).Uint64("version", h.version).Msg("Mode changed")
}

// Reset returns to Idle, keeping the active mode.
func (h *Hub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetLocked()
}

// SelectFile replaces the current document. State is reset before the
// document is validated; on success it is preprocessed according to the
// mode. The returned error is also recorded in the state.
func (h *Hub) SelectFile(ctx context.Context, doc domain.UploadedDocument) error {
	h.mu.Lock()
	h.resetLocked()
	cfg := h.deps.Registry.ConfigOf(h.mode)

	if err := h.deps.Validator.Validate(doc, cfg); err != nil {
		h.failLocked(err)
		h.mu.Unlock()
		h.logger.Info().Str("document", doc.Name).Str("mime", doc.MimeType).Str("accept", cfg.Accept).Msg("Rejected document")
		return err
	}

	h.doc = &doc
	h.phase = PhaseFileSelected
	version := h.version

	switch cfg.Preprocessor {
	case domain.PreprocessImage:
		h.loading = true
		h.mu.Unlock()
		return h.encodeImage(ctx, version, doc)
	case domain.PreprocessPDF:
		h.loading = true
		h.phase = PhaseRasterizing
		h.progress = h.deps.Messages.Get(domain.MsgPreparingPDF)
		h.mu.Unlock()
		return h.rasterize(ctx, version, doc)
	default:
		h.mu.Unlock()
		return nil
	}
}

func (h *Hub) encodeImage(ctx context.Context, version uint64, doc domain.UploadedDocument) error {
	defer h.finish(version)

	img, err := h.deps.Images.Encode(ctx, doc)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.staleLocked(version, "encode_image") {
		return nil
	}
	if err != nil {
		h.failLocked(err)
		return err
	}
	h.payloads = []domain.Payload{img.Payload}
	h.preview = img.Preview
	h.phase = PhaseReady
	return nil
}

func (h *Hub) rasterize(ctx context.Context, version uint64, doc domain.UploadedDocument) error {
	defer h.finish(version)

	raster, err := h.deps.Rasterizer.Rasterize(ctx, doc, func(ev domain.StreamEvent) {
		h.mu.Lock()
		if h.version != version {
			h.mu.Unlock()
			return
		}
		switch ev.Type {
		case domain.EventEngineLoading, domain.EventPageProcessing:
			if msg, ok := ev.Payload.(string); ok {
				h.progress = msg
			}
		case domain.EventPreview:
			if preview, ok := ev.Payload.(string); ok {
				h.preview = preview
			}
		}
		h.mu.Unlock()
		h.emit(ev)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.staleLocked(version, "rasterize") {
		return nil
	}
	if err != nil {
		h.failLocked(err)
		return err
	}
	h.payloads = raster.Payloads()
	h.preview = raster.Preview
	h.phase = PhaseReady
	return nil
}

// Extract runs the orchestrator on the current payloads. It is a no-op,
// reporting false, when there is nothing to extract, an extraction is already
// in flight, the mode is unsupported or the generator is not configured.
func (h *Hub) Extract(ctx context.Context) (bool, error) {
	h.mu.Lock()
	cfg := h.deps.Registry.ConfigOf(h.mode)
	if h.deps.ConfigMissing || h.loading || !cfg.Supported || len(h.payloads) == 0 {
		h.mu.Unlock()
		return false, nil
	}

	version := h.version
	payloads := make([]domain.Payload, len(h.payloads))
	copy(payloads, h.payloads)
	h.loading = true
	h.progress = h.deps.Messages.Get(domain.MsgSendingToAI)
	h.phase = PhaseExtracting
	h.result = nil
	h.errMsg = ""
	h.mu.Unlock()

	defer h.finish(version)

	result, err := h.deps.Orchestrator.ExtractDocument(ctx, cfg.Mode, payloads)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.staleLocked(version, "extract") {
		return true, nil
	}
	if err != nil {
		// The payloads stay so the user can submit again.
		h.result = nil
		h.phase = PhaseErrored
		h.setErrorLocked(err)
		return true, err
	}
	h.result = result
	h.phase = PhaseDone
	h.emit(domain.StreamEvent{Type: domain.EventComplete, TotalPages: len(payloads), Timestamp: time.Now()})
	return true, nil
}

// Snapshot returns a copy of the current state.
func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Snapshot{
		Mode:          h.mode,
		Phase:         h.phase,
		PageCount:     len(h.payloads),
		Preview:       h.preview,
		Loading:       h.loading,
		Progress:      h.progress,
		Error:         h.errMsg,
		ConfigMissing: h.deps.ConfigMissing,
		Version:       h.version,
	}
	if h.doc != nil {
		info := h.doc.Info()
		s.Document = &info
	}
	if len(h.payloads) > 0 {
		s.Payloads = make([]domain.Payload, len(h.payloads))
		copy(s.Payloads, h.payloads)
	}
	if h.result != nil {
		r := *h.result
		s.Result = &r
	}
	return s
}

func (h *Hub) resetLocked() {
	h.version++
	h.phase = PhaseIdle
	h.doc = nil
	h.payloads = nil
	h.preview = ""
	h.loading = false
	h.progress = ""
	h.result = nil
	h.errMsg = ""
}

// failLocked records err with no partial artifacts left visible.
func (h *Hub) failLocked(err error) {
	h.payloads = nil
	h.preview = ""
	h.result = nil
	h.phase = PhaseErrored
	h.setErrorLocked(err)
}

func (h *Hub) setErrorLocked(err error) {
	h.errMsg = domain.UserMessage(err, h.deps.Messages.Get(domain.MsgUnknownError))
	h.emit(domain.StreamEvent{Type: domain.EventError, Payload: h.errMsg, Timestamp: time.Now()})
}

// finish clears the loading flag if version is still current.
func (h *Hub) finish(version uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.version == version {
		h.loading = false
		h.progress = ""
	}
}

func (h *Hub) staleLocked(version uint64, op string) bool {
	if h.version == version {
		return false
	}
	h.logger.Debug().
		Str("operation", op).
		Uint64("issued", version).
		Uint64("current", h.version).
		Msg("Discarding stale completion")
	return true
}

func (h *Hub) emit(ev domain.StreamEvent) {
	if h.deps.Events == nil {
		return
	}
	select {
	case h.deps.Events <- ev:
	default:
		h.logger.Warn().Str("event", string(ev.Type)).Msg("Event channel full, dropping event")
	}
}
