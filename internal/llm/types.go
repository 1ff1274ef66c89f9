package llm

import (
	"strings"

	"github.com/spherical/text-extractor/internal/domain"
)

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Tools             []tool    `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	Error          *apiError       `json:"error,omitempty"`
}

type candidate struct {
	Content           content            `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	Web *webSource `json:"web,omitempty"`
}

type webSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// buildRequest lays out image parts first, in payload order, followed by the prompt.
func buildRequest(req domain.ExtractionRequest) generateRequest {
	parts := make([]part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, part{InlineData: &inlineData{MimeType: img.MimeType, Data: img.Data}})
	}
	parts = append(parts, part{Text: req.Prompt})

	out := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	}
	if req.SystemInstruction != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}
	if req.Search {
		out.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	return out
}

func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// sources returns web grounding chunks; chunks without a URI are skipped.
func (r *generateResponse) sources() []domain.GroundingSource {
	out := []domain.GroundingSource{}
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return out
	}
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, domain.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
