package extract

import (
	"context"
	"strings"
	"sync"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
)

// ResearchState is a copy of a ResearchDesk's state.
type ResearchState struct {
	Mode          mode.ResearchMode        `json:"mode"`
	Loading       bool                     `json:"loading"`
	Result        *domain.ExtractionResult `json:"result,omitempty"`
	Error         string                   `json:"error,omitempty"`
	ConfigMissing bool                     `json:"configMissing"`
}

// ResearchDesk owns the state of the search-grounded research workflow.
type ResearchDesk struct {
	orchestrator  *Orchestrator
	msgs          *domain.Messages
	logger        *observability.Logger
	configMissing bool

	mu      sync.Mutex
	version uint64
	mode    mode.ResearchMode
	loading bool
	result  *domain.ExtractionResult
	errMsg  string
}

// NewResearchDesk creates a desk in the literature review mode.
func NewResearchDesk(o *Orchestrator, msgs *domain.Messages, logger *observability.Logger, configMissing bool) *ResearchDesk {
	return &ResearchDesk{
		orchestrator:  o,
		msgs:          msgs,
		logger:        logger.WithComponent("research"),
		configMissing: configMissing,
		mode:          mode.ResearchLiteratureReview,
	}
}

// SetMode switches the research mode and clears any result or error.
func (d *ResearchDesk) SetMode(m mode.ResearchMode) {
	cfg := mode.ResearchConfigOf(d.msgs, m)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.version++
	d.mode = cfg.Mode
	d.loading = false
	d.result = nil
	d.errMsg = ""
}

// SearchGrounded runs a grounded search for topic. It does nothing, returning
// false, for a blank topic, a request already in flight, a mode that is not
// implemented, or a missing generator configuration.
func (d *ResearchDesk) SearchGrounded(ctx context.Context, topic string) (bool, error) {
	topic = strings.TrimSpace(topic)

	d.mu.Lock()
	cfg := mode.ResearchConfigOf(d.msgs, d.mode)
	if topic == "" || d.loading || !cfg.Implemented || d.configMissing {
		d.mu.Unlock()
		return false, nil
	}
	version := d.version
	d.loading = true
	d.result = nil
	d.errMsg = ""
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.version == version {
			d.loading = false
		}
		d.mu.Unlock()
	}()

	result, err := d.orchestrator.SearchGrounded(ctx, topic)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.version != version {
		d.logger.Debug().Str("mode", string(cfg.Mode)).Msg("Discarding stale research result")
		return true, nil
	}
	if err != nil {
		d.errMsg = domain.UserMessage(err, d.msgs.Get(domain.MsgUnknownError))
		return true, err
	}
	d.result = result
	return true, nil
}

// Snapshot returns a copy of the current state.
func (d *ResearchDesk) Snapshot() ResearchState {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := ResearchState{
		Mode:          d.mode,
		Loading:       d.loading,
		Error:         d.errMsg,
		ConfigMissing: d.configMissing,
	}
	if d.result != nil {
		r := *d.result
		s.Result = &r
	}
	return s
}
