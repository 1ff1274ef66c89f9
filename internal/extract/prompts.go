package extract

import (
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
)

// documentRequest builds the request for a document extraction. A multi-page
// document gets the combined-document wording instead of the single-image one.
func documentRequest(msgs *domain.Messages, m domain.ExtractionMode, payloads []domain.Payload) domain.ExtractionRequest {
	prompt := msgs.Get(domain.MsgPromptSingleImage)
	if len(payloads) > 1 {
		prompt = msgs.Get(domain.MsgPromptMultiImage)
	}

	var instruction string
	switch m {
	case domain.ModeHandwriting:
		instruction = msgs.Get(domain.MsgInstrHandwriting)
	case domain.ModePDF:
		instruction = msgs.Get(domain.MsgInstrPDF)
	default:
		instruction = msgs.Get(domain.MsgInstrDefault)
	}

	images := make([]domain.Payload, len(payloads))
	copy(images, payloads)

	return domain.ExtractionRequest{
		Prompt:            prompt,
		SystemInstruction: instruction,
		Images:            images,
	}
}

func researchRequest(msgs *domain.Messages, topic string) domain.ExtractionRequest {
	return domain.ExtractionRequest{
		Prompt:            msgs.Get(domain.MsgPromptLiterature, topic),
		SystemInstruction: msgs.Get(domain.MsgInstrLiterature),
		Search:            true,
	}
}

func assistRequest(msgs *domain.Messages, kind mode.AssistantKind, field, question string) domain.ExtractionRequest {
	key := domain.MsgInstrExercise
	if kind == mode.AssistProgramming {
		key = domain.MsgInstrProgramming
	}
	return domain.ExtractionRequest{
		Prompt:            question,
		SystemInstruction: msgs.Get(key, field),
	}
}
