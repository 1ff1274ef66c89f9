package extract

import (
	"context"
	"strings"
	"sync"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
)

// AssistantState is a copy of an Assistant's state.
type AssistantState struct {
	Kind          mode.AssistantKind       `json:"kind"`
	Fields        []string                 `json:"fields"`
	Field         string                   `json:"field"`
	Loading       bool                     `json:"loading"`
	Result        *domain.ExtractionResult `json:"result,omitempty"`
	Error         string                   `json:"error,omitempty"`
	ConfigMissing bool                     `json:"configMissing"`
}

// Assistant answers free-text questions within one subject field.
type Assistant struct {
	kind          mode.AssistantKind
	fields        []string
	orchestrator  *Orchestrator
	msgs          *domain.Messages
	logger        *observability.Logger
	configMissing bool

	mu      sync.Mutex
	field   string
	loading bool
	result  *domain.ExtractionResult
	errMsg  string
}

// NewAssistant creates an assistant with the first field of kind selected.
func NewAssistant(kind mode.AssistantKind, o *Orchestrator, msgs *domain.Messages, logger *observability.Logger, configMissing bool) *Assistant {
	fields := mode.Fields(msgs, kind)
	return &Assistant{
		kind:          kind,
		fields:        fields,
		orchestrator:  o,
		msgs:          msgs,
		logger:        logger.WithComponent("assistant"),
		configMissing: configMissing,
		field:         fields[0],
	}
}

// SetField selects the subject field. Unknown fields are ignored and
// reported as false.
func (a *Assistant) SetField(field string) bool {
	for _, f := range a.fields {
		if f == field {
			a.mu.Lock()
			a.field = f
			a.mu.Unlock()
			return true
		}
	}
	return false
}

// Ask sends question to the generator. It does nothing, returning false, for
// a blank question, a request already in flight or a missing configuration.
func (a *Assistant) Ask(ctx context.Context, question string) (bool, error) {
	question = strings.TrimSpace(question)

	a.mu.Lock()
	if question == "" || a.loading || a.configMissing {
		a.mu.Unlock()
		return false, nil
	}
	field := a.field
	a.loading = true
	a.result = nil
	a.errMsg = ""
	a.mu.Unlock()

	result, err := a.orchestrator.Assist(ctx, a.kind, field, question)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	if err != nil {
		a.errMsg = domain.UserMessage(err, a.msgs.Get(domain.MsgUnknownError))
		return true, err
	}
	a.result = result
	return true, nil
}

// Snapshot returns a copy of the current state.
func (a *Assistant) Snapshot() AssistantState {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := AssistantState{
		Kind:          a.kind,
		Fields:        append([]string(nil), a.fields...),
		Field:         a.field,
		Loading:       a.loading,
		Error:         a.errMsg,
		ConfigMissing: a.configMissing,
	}
	if a.result != nil {
		r := *a.result
		s.Result = &r
	}
	return s
}
