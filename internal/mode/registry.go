// Package mode holds the closed registries of extraction modes, research modes
// and assistant fields.
package mode

import (
	"fmt"

	"github.com/spherical/text-extractor/internal/domain"
)

const (
	iconHandwriting = "M1.5 6a2.25 2.25 0 012.25-2.25h16.5A2.25 2.25 0 0122.5 6v12A2.25 2.25 0 0120.25 20.25H3.75A2.25 2.25 0 011.5 18V6zM3 16.06V18c0 .414.336.75.75.75h16.5A.75.75 0 0021 18v-1.94l-2.69-2.689a1.5 1.5 0 00-2.12 0l-.88.879.97.97a.75.75 0 11-1.06 1.06l-5.16-5.159a1.5 1.5 0 00-2.12 0L3 16.061zm10.125-7.81a1.125 1.125 0 112.25 0 1.125 1.125 0 01-2.25 0z"
	iconPDF         = "M8 2a2 2 0 0 0-2 2v16a2 2 0 0 0 2 2h8a2 2 0 0 0 2-2V4a2 2 0 0 0-2-2H8zM9 7h6v2H9V7zm0 4h6v2H9v-2zm0 4h3v2H9v-2z"
	iconAudio       = "M12 1a3 3 0 0 0-3 3v8a3 3 0 0 0 6 0V4a3 3 0 0 0-3-3zm0 16a5 5 0 0 1-5-5H5a7 7 0 0 0 6 6.92V22h2v-2.08A7 7 0 0 0 19 12h-2a5 5 0 0 1-5 5z"
	iconVideo       = "M15 8v8H5V8h10m1-2H4a1 1 0 0 0-1 1v10a1 1 0 0 0 1 1h12a1 1 0 0 0 1-1v-3.5l4 4v-11l-4 4V7a1 1 0 0 0-1-1z"
)

// Order is the presentation order of the extraction modes.
var Order = []domain.ExtractionMode{
	domain.ModeHandwriting,
	domain.ModePDF,
	domain.ModeAudio,
	domain.ModeVideo,
}

// Registry is the immutable lookup from extraction mode to its configuration.
// It is built once at startup with localized titles.
type Registry struct {
	handwriting domain.ModeConfig
	pdf         domain.ModeConfig
	audio       domain.ModeConfig
	video       domain.ModeConfig
}

// NewRegistry builds the registry using msgs for titles and explanations.
func NewRegistry(msgs *domain.Messages) *Registry {
	return &Registry{
		handwriting: domain.ModeConfig{
			Mode:         domain.ModeHandwriting,
			Title:        msgs.Get(domain.MsgTitleHandwriting),
			Icon:         iconHandwriting,
			Accept:       "image/*",
			Supported:    true,
			Preprocessor: domain.PreprocessImage,
		},
		pdf: domain.ModeConfig{
			Mode:         domain.ModePDF,
			Title:        msgs.Get(domain.MsgTitlePDF),
			Icon:         iconPDF,
			Accept:       "application/pdf",
			Supported:    true,
			Preprocessor: domain.PreprocessPDF,
		},
		audio: domain.ModeConfig{
			Mode:              domain.ModeAudio,
			Title:             msgs.Get(domain.MsgTitleAudio),
			Icon:              iconAudio,
			Accept:            "audio/*",
			Supported:         false,
			UnsupportedReason: msgs.Get(domain.MsgReasonAudio),
			Preprocessor:      domain.PreprocessNone,
		},
		video: domain.ModeConfig{
			Mode:              domain.ModeVideo,
			Title:             msgs.Get(domain.MsgTitleVideo),
			Icon:              iconVideo,
			Accept:            "video/*",
			Supported:         false,
			UnsupportedReason: msgs.Get(domain.MsgReasonVideo),
			Preprocessor:      domain.PreprocessNone,
		},
	}
}

// ConfigOf returns the configuration for m. An unknown mode is a programming
// error: callers must go through Parse for untrusted input.
func (r *Registry) ConfigOf(m domain.ExtractionMode) domain.ModeConfig {
	switch m {
	case domain.ModeHandwriting:
		return r.handwriting
	case domain.ModePDF:
		return r.pdf
	case domain.ModeAudio:
		return r.audio
	case domain.ModeVideo:
		return r.video
	}
	panic(fmt.Sprintf("mode: unknown extraction mode %q", m))
}

// All returns every mode configuration in presentation order.
func (r *Registry) All() []domain.ModeConfig {
	out := make([]domain.ModeConfig, 0, len(Order))
	for _, m := range Order {
		out = append(out, r.ConfigOf(m))
	}
	return out
}

// Parse converts untrusted input into an ExtractionMode.
func Parse(s string) (domain.ExtractionMode, error) {
	for _, m := range Order {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown extraction mode %q", s)
}
