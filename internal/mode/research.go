package mode

import (
	"fmt"

	"github.com/spherical/text-extractor/internal/domain"
)

// ResearchMode is one of the research desk workflows.
type ResearchMode string

const (
	ResearchLiteratureReview ResearchMode = "literature-review"
	ResearchSummarizer       ResearchMode = "summarizer"
	ResearchParaphraser      ResearchMode = "paraphraser"
	ResearchProposal         ResearchMode = "proposal"
)

// ResearchConfig describes a research mode. Only implemented modes may run.
type ResearchConfig struct {
	Mode        ResearchMode `json:"mode"`
	Title       string       `json:"title"`
	Implemented bool         `json:"implemented"`
}

var researchOrder = []ResearchMode{
	ResearchLiteratureReview,
	ResearchSummarizer,
	ResearchParaphraser,
	ResearchProposal,
}

// ResearchModes returns all research modes with localized titles.
func ResearchModes(msgs *domain.Messages) []ResearchConfig {
	out := make([]ResearchConfig, 0, len(researchOrder))
	for _, m := range researchOrder {
		out = append(out, ResearchConfigOf(msgs, m))
	}
	return out
}

// ResearchConfigOf returns the configuration for m. Unknown modes panic.
func ResearchConfigOf(msgs *domain.Messages, m ResearchMode) ResearchConfig {
	switch m {
	case ResearchLiteratureReview:
		return ResearchConfig{Mode: m, Title: msgs.Get(domain.MsgTitleLiteratureReview), Implemented: true}
	case ResearchSummarizer:
		return ResearchConfig{Mode: m, Title: msgs.Get(domain.MsgTitleSummarizer)}
	case ResearchParaphraser:
		return ResearchConfig{Mode: m, Title: msgs.Get(domain.MsgTitleParaphraser)}
	case ResearchProposal:
		return ResearchConfig{Mode: m, Title: msgs.Get(domain.MsgTitleProposal)}
	}
	panic(fmt.Sprintf("mode: unknown research mode %q", m))
}

// ParseResearch converts untrusted input into a ResearchMode.
func ParseResearch(s string) (ResearchMode, error) {
	for _, m := range researchOrder {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown research mode %q", s)
}

// AssistantKind selects the assistant persona.
type AssistantKind string

const (
	AssistExercise    AssistantKind = "exercise"
	AssistProgramming AssistantKind = "programming"
)

var fieldKeys = map[AssistantKind][]string{
	AssistExercise: {
		domain.MsgFieldEngineering,
		domain.MsgFieldBasicSciences,
		domain.MsgFieldMedical,
		domain.MsgFieldOther,
	},
	AssistProgramming: {
		domain.MsgFieldDataMining,
		domain.MsgFieldMachineLearning,
		domain.MsgFieldElectrical,
		domain.MsgFieldAIAnalysis,
		domain.MsgFieldAlgorithms,
		domain.MsgFieldCharting,
	},
}

// ParseAssistant converts untrusted input into an AssistantKind.
func ParseAssistant(s string) (AssistantKind, error) {
	k := AssistantKind(s)
	if _, ok := fieldKeys[k]; !ok {
		return "", fmt.Errorf("unknown assistant %q", s)
	}
	return k, nil
}

// Fields returns the localized subject fields offered by an assistant.
// The first entry is the default selection.
func Fields(msgs *domain.Messages, kind AssistantKind) []string {
	keys := fieldKeys[kind]
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, msgs.Get(k))
	}
	return out
}
