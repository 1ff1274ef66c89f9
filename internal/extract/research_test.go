package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
	"github.com/spherical/text-extractor/internal/render"
)

func newOrchestrator(gen domain.ContentGenerator, msgs *domain.Messages) *Orchestrator {
	logger := observability.Nop()
	return NewOrchestrator(gen, render.NewDefault(logger), msgs, logger)
}

func TestSearchGroundedWithoutMetadata(t *testing.T) {
	msgs := domain.NewMessages("en")
	gen := &stubGenerator{grounded: &domain.GroundedResponse{Text: "## Review\n\nFindings."}}
	desk := NewResearchDesk(newOrchestrator(gen, msgs), msgs, observability.Nop(), false)

	ran, err := desk.SearchGrounded(context.Background(), "  graph neural networks ")
	require.NoError(t, err)
	assert.True(t, ran)

	s := desk.Snapshot()
	require.NotNil(t, s.Result)
	assert.Contains(t, s.Result.HTML, "<h2>Review</h2>")
	assert.NotNil(t, s.Result.Sources)
	assert.Empty(t, s.Result.Sources)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)

	req := gen.calls()[0]
	assert.True(t, req.Search)
	assert.Empty(t, req.Images)
	assert.Equal(t, `Literature review for the topic: "graph neural networks"`, req.Prompt)
	assert.Equal(t, msgs.Get(domain.MsgInstrLiterature), req.SystemInstruction)
}

func TestSearchGroundedKeepsSources(t *testing.T) {
	msgs := domain.NewMessages("en")
	sources := []domain.GroundingSource{{Title: "A survey", URI: "https://example.org/survey"}}
	gen := &stubGenerator{grounded: &domain.GroundedResponse{Text: "text", Sources: sources}}
	desk := NewResearchDesk(newOrchestrator(gen, msgs), msgs, observability.Nop(), false)

	_, err := desk.SearchGrounded(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, sources, desk.Snapshot().Result.Sources)
}

func TestSearchGroundedPreconditions(t *testing.T) {
	msgs := domain.NewMessages("en")

	tests := []struct {
		name          string
		mode          mode.ResearchMode
		topic         string
		configMissing bool
	}{
		{name: "blank topic", mode: mode.ResearchLiteratureReview, topic: "   "},
		{name: "unimplemented mode", mode: mode.ResearchSummarizer, topic: "topic"},
		{name: "config missing", mode: mode.ResearchLiteratureReview, topic: "topic", configMissing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{text: "x"}
			desk := NewResearchDesk(newOrchestrator(gen, msgs), msgs, observability.Nop(), tt.configMissing)
			desk.SetMode(tt.mode)
			before := desk.Snapshot()

			ran, err := desk.SearchGrounded(context.Background(), tt.topic)
			assert.NoError(t, err)
			assert.False(t, ran)
			assert.Empty(t, gen.calls())
			assert.Equal(t, before, desk.Snapshot())
		})
	}
}

func TestSearchGroundedFailure(t *testing.T) {
	msgs := domain.NewMessages("en")
	gen := &stubGenerator{err: errUpstream}
	desk := NewResearchDesk(newOrchestrator(gen, msgs), msgs, observability.Nop(), false)

	ran, err := desk.SearchGrounded(context.Background(), "topic")
	assert.True(t, ran)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeProvider))

	s := desk.Snapshot()
	assert.Equal(t, msgs.Get(domain.MsgSearchFailed), s.Error)
	assert.Nil(t, s.Result)
	assert.False(t, s.Loading)
}

func TestResearchModeChangeClearsResult(t *testing.T) {
	msgs := domain.NewMessages("en")
	desk := NewResearchDesk(newOrchestrator(&stubGenerator{text: "r"}, msgs), msgs, observability.Nop(), false)
	_, err := desk.SearchGrounded(context.Background(), "topic")
	require.NoError(t, err)
	require.NotNil(t, desk.Snapshot().Result)

	desk.SetMode(mode.ResearchProposal)

	s := desk.Snapshot()
	assert.Equal(t, mode.ResearchProposal, s.Mode)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Error)
}

func TestAssistantExercise(t *testing.T) {
	msgs := domain.NewMessages("en")
	gen := &stubGenerator{text: "The root is $x = 2$."}
	a := NewAssistant(mode.AssistExercise, newOrchestrator(gen, msgs), msgs, observability.Nop(), false)

	assert.Equal(t, "Engineering", a.Snapshot().Field)
	assert.True(t, a.SetField("Basic sciences"))
	assert.False(t, a.SetField("Astrology"))

	ran, err := a.Ask(context.Background(), "Solve x - 2 = 0")
	require.NoError(t, err)
	assert.True(t, ran)

	req := gen.calls()[0]
	assert.Equal(t, "Solve x - 2 = 0", req.Prompt)
	assert.Contains(t, req.SystemInstruction, `"Basic sciences"`)
	assert.Contains(t, req.SystemInstruction, "LaTeX")
	assert.Empty(t, req.Images)

	s := a.Snapshot()
	assert.Equal(t, "Basic sciences", s.Field)
	require.NotNil(t, s.Result)
	assert.Contains(t, s.Result.HTML, `<span class="math-inline">`)
	assert.False(t, s.Loading)
}

func TestAssistantProgramming(t *testing.T) {
	msgs := domain.NewMessages("en")
	gen := &stubGenerator{text: "```go\nfmt.Println(1)\n```"}
	a := NewAssistant(mode.AssistProgramming, newOrchestrator(gen, msgs), msgs, observability.Nop(), false)

	_, err := a.Ask(context.Background(), "print one")
	require.NoError(t, err)

	assert.Contains(t, gen.calls()[0].SystemInstruction, `"Data mining"`)
	assert.Contains(t, a.Snapshot().Result.HTML, "<pre><code")
}

func TestAssistantPreconditions(t *testing.T) {
	msgs := domain.NewMessages("en")
	gen := &stubGenerator{text: "x"}

	a := NewAssistant(mode.AssistExercise, newOrchestrator(gen, msgs), msgs, observability.Nop(), false)
	ran, err := a.Ask(context.Background(), "  ")
	assert.NoError(t, err)
	assert.False(t, ran)

	missing := NewAssistant(mode.AssistExercise, newOrchestrator(gen, msgs), msgs, observability.Nop(), true)
	ran, err = missing.Ask(context.Background(), "question")
	assert.NoError(t, err)
	assert.False(t, ran)
	assert.True(t, missing.Snapshot().ConfigMissing)

	assert.Empty(t, gen.calls())
}

func TestAssistantFailure(t *testing.T) {
	msgs := domain.NewMessages("en")
	a := NewAssistant(mode.AssistExercise, newOrchestrator(&stubGenerator{err: errUpstream}, msgs), msgs, observability.Nop(), false)

	_, err := a.Ask(context.Background(), "question")
	require.Error(t, err)

	s := a.Snapshot()
	assert.Equal(t, msgs.Get(domain.MsgProviderFailed), s.Error)
	assert.Nil(t, s.Result)
	assert.False(t, s.Loading)
}

func TestOrchestratorConfigErrorIsLocalized(t *testing.T) {
	msgs := domain.NewMessages("en")
	o := newOrchestrator(&stubGenerator{err: domain.ConfigError("API key is required", nil)}, msgs)

	_, err := o.ExtractDocument(context.Background(), domain.ModePDF, []domain.Payload{{MimeType: "image/jpeg", Data: "x"}})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
	assert.Equal(t, msgs.Get(domain.MsgConfigMissing), domain.UserMessage(err, ""))
}

func TestOrchestratorRefusesEmptyPayloads(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	_, err := newOrchestrator(gen, domain.NewMessages("en")).ExtractDocument(context.Background(), domain.ModePDF, nil)
	assert.ErrorIs(t, err, errNoPayloads)
	assert.Empty(t, gen.calls())
}
