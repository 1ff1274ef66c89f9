// Package extract assembles generation requests and owns the pipeline state
// behind document extraction, research and the question assistant.
package extract

import (
	"context"
	"errors"
	"time"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
)

// ResultRenderer turns raw generated text into displayable HTML.
type ResultRenderer interface {
	Render(text string) string
}

var errNoPayloads = errors.New("extract: no payloads to extract from")

// Orchestrator invokes the content generator and renders its answers. It holds
// no pipeline state; callers own loading flags and results.
type Orchestrator struct {
	generator domain.ContentGenerator
	renderer  ResultRenderer
	msgs      *domain.Messages
	logger    *observability.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(generator domain.ContentGenerator, renderer ResultRenderer, msgs *domain.Messages, logger *observability.Logger) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		renderer:  renderer,
		msgs:      msgs,
		logger:    logger.WithComponent("orchestrator"),
	}
}

// ExtractDocument sends the ordered payloads with the mode's instruction and
// renders the response.
func (o *Orchestrator) ExtractDocument(ctx context.Context, m domain.ExtractionMode, payloads []domain.Payload) (*domain.ExtractionResult, error) {
	if len(payloads) == 0 {
		return nil, errNoPayloads
	}

	log := o.logger.WithOperation("extract_document")
	start := time.Now()
	log.Info().Str("mode", string(m)).Int("payloads", len(payloads)).Msg("Starting extraction")

	text, err := o.generator.Generate(ctx, documentRequest(o.msgs, m, payloads))
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Extraction failed")
		return nil, o.providerFailure(err, domain.MsgProviderFailed)
	}

	log.Info().Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("Extraction complete")
	return &domain.ExtractionResult{HTML: o.renderer.Render(text), Raw: text}, nil
}

// SearchGrounded answers topic with web search enabled. A response without
// grounding metadata yields an empty source list.
func (o *Orchestrator) SearchGrounded(ctx context.Context, topic string) (*domain.ExtractionResult, error) {
	log := o.logger.WithOperation("search_grounded")
	start := time.Now()

	resp, err := o.generator.GenerateWithSearch(ctx, researchRequest(o.msgs, topic))
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Grounded search failed")
		return nil, o.providerFailure(err, domain.MsgSearchFailed)
	}

	if resp == nil {
		resp = &domain.GroundedResponse{}
	}
	sources := resp.Sources
	if sources == nil {
		sources = []domain.GroundingSource{}
	}
	log.Info().Dur("duration", time.Since(start)).Int("sources", len(sources)).Msg("Grounded search complete")

	return &domain.ExtractionResult{
		HTML:    o.renderer.Render(resp.Text),
		Raw:     resp.Text,
		Sources: sources,
	}, nil
}

// Assist answers a free-text question as the given assistant persona.
func (o *Orchestrator) Assist(ctx context.Context, kind mode.AssistantKind, field, question string) (*domain.ExtractionResult, error) {
	log := o.logger.WithOperation("assist")
	start := time.Now()

	text, err := o.generator.Generate(ctx, assistRequest(o.msgs, kind, field, question))
	if err != nil {
		log.Error().Err(err).Str("assistant", string(kind)).Msg("Assistant request failed")
		return nil, o.providerFailure(err, domain.MsgProviderFailed)
	}

	log.Debug().Dur("duration", time.Since(start)).Str("assistant", string(kind)).Msg("Assistant answered")
	return &domain.ExtractionResult{HTML: o.renderer.Render(text), Raw: text}, nil
}

// providerFailure replaces an upstream error with a localized message. The
// cause stays reachable through Unwrap for logging.
func (o *Orchestrator) providerFailure(err error, key string) error {
	if domain.IsType(err, domain.ErrorTypeConfig) {
		return domain.ConfigError(o.msgs.Get(domain.MsgConfigMissing), err)
	}
	return domain.ProviderError(o.msgs.Get(key), err)
}
