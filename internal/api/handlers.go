package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spherical/text-extractor/internal/app"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/extract"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
)

// sniffBytes is how much of an upload is inspected when no type is declared.
const sniffBytes = 3072

// Handler serves the extraction API.
type Handler struct {
	app      *app.App
	sessions *SessionStore
	logger   *observability.Logger
	maxBytes int64
}

// SessionDTO is a session id with its pipeline state.
type SessionDTO struct {
	ID string `json:"id"`
	extract.Snapshot
}

// ModesDTO lists everything a client needs to draw its mode pickers.
type ModesDTO struct {
	Modes      []domain.ModeConfig             `json:"modes"`
	Research   []mode.ResearchConfig           `json:"research"`
	Assistants map[mode.AssistantKind][]string `json:"assistants"`
}

type setModeRequest struct {
	Mode string `json:"mode"`
}

type researchRequest struct {
	Mode  string `json:"mode"`
	Topic string `json:"topic"`
}

type assistRequest struct {
	Kind     string `json:"kind"`
	Field    string `json:"field"`
	Question string `json:"question"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"service":    "text-extractor",
		"configured": !h.app.ConfigMissing,
		"sessions":   h.sessions.Len(),
	})
}

// Modes handles GET /api/v1/modes.
func (h *Handler) Modes(w http.ResponseWriter, r *http.Request) {
	msgs := h.app.Messages
	writeJSON(w, http.StatusOK, ModesDTO{
		Modes:    h.app.Registry.All(),
		Research: mode.ResearchModes(msgs),
		Assistants: map[mode.AssistantKind][]string{
			mode.AssistExercise:    mode.Fields(msgs, mode.AssistExercise),
			mode.AssistProgramming: mode.Fields(msgs, mode.AssistProgramming),
		},
	})
}

// CreateSession handles POST /api/v1/sessions. The body may name the initial mode.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	initial := domain.ModeHandwriting

	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Mode != "" {
		m, err := mode.Parse(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid mode", err.Error())
			return
		}
		initial = m
	}

	hub := h.app.NewHub(initial, nil)
	id := h.sessions.Create(hub)
	h.logger.Info().Str("session_id", id.String()).Str("mode", string(initial)).Msg("Session created")

	writeJSON(w, http.StatusCreated, SessionDTO{ID: id.String(), Snapshot: hub.Snapshot()})
}

// GetSession handles GET /api/v1/sessions/{sessionId}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, hub, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{ID: id.String(), Snapshot: hub.Snapshot()})
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionId}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sessionId", err.Error())
		return
	}
	if !h.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMode handles PUT /api/v1/sessions/{sessionId}/mode.
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	id, hub, ok := h.session(w, r)
	if !ok {
		return
	}

	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	m, err := mode.Parse(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid mode", err.Error())
		return
	}

	hub.SetMode(m)
	writeJSON(w, http.StatusOK, SessionDTO{ID: id.String(), Snapshot: hub.Snapshot()})
}

// UploadDocument handles POST /api/v1/sessions/{sessionId}/document with the
// file in the multipart field "file". It returns once preprocessing finishes.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, hub, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, h.app.Messages.Get(domain.MsgReadFailed), err.Error())
		return
	}

	head := data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	mimeType := intake.DeclaredOrDetected(header.Header.Get("Content-Type"), head)
	doc := domain.DocumentFromBytes(header.Filename, mimeType, data)

	h.logger.Info().
		Str("session_id", id.String()).
		Str("document", doc.Name).
		Str("mime", mimeType).
		Int64("size", doc.Size).
		Msg("Document uploaded")

	status := http.StatusOK
	if err := hub.SelectFile(r.Context(), doc); err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, SessionDTO{ID: id.String(), Snapshot: hub.Snapshot()})
}

// Extract handles POST /api/v1/sessions/{sessionId}/extract.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	id, hub, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.app.ConfigMissing {
		writeError(w, http.StatusServiceUnavailable, h.app.Messages.Get(domain.MsgConfigMissing), "")
		return
	}

	ran, err := hub.Extract(r.Context())
	status := http.StatusOK
	switch {
	case !ran:
		status = http.StatusConflict
	case err != nil:
		status = statusFor(err)
	}
	writeJSON(w, status, SessionDTO{ID: id.String(), Snapshot: hub.Snapshot()})
}

// Research handles POST /api/v1/research.
func (h *Handler) Research(w http.ResponseWriter, r *http.Request) {
	if h.app.ConfigMissing {
		writeError(w, http.StatusServiceUnavailable, h.app.Messages.Get(domain.MsgConfigMissing), "")
		return
	}

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	desk := h.app.NewResearchDesk()
	if req.Mode != "" {
		m, err := mode.ParseResearch(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid research mode", err.Error())
			return
		}
		desk.SetMode(m)
	}

	ran, err := desk.SearchGrounded(r.Context(), req.Topic)
	status := http.StatusOK
	switch {
	case !ran:
		status = http.StatusUnprocessableEntity
	case err != nil:
		status = statusFor(err)
	}
	writeJSON(w, status, desk.Snapshot())
}

// Assist handles POST /api/v1/assist.
func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	if h.app.ConfigMissing {
		writeError(w, http.StatusServiceUnavailable, h.app.Messages.Get(domain.MsgConfigMissing), "")
		return
	}

	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	kind, err := mode.ParseAssistant(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assistant", err.Error())
		return
	}

	assistant := h.app.NewAssistant(kind)
	if req.Field != "" && !assistant.SetField(req.Field) {
		writeError(w, http.StatusBadRequest, "unknown field", req.Field)
		return
	}

	ran, err := assistant.Ask(r.Context(), req.Question)
	status := http.StatusOK
	switch {
	case !ran:
		status = http.StatusUnprocessableEntity
	case err != nil:
		status = statusFor(err)
	}
	writeJSON(w, status, assistant.Snapshot())
}

// session resolves the {sessionId} parameter, writing the error response itself.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *extract.Hub, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sessionId", err.Error())
		return uuid.Nil, nil, false
	}
	hub, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found", "")
		return uuid.Nil, nil, false
	}
	return id, hub, true
}
