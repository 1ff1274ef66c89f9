package render

import (
	"fmt"
	"html"
	"regexp"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/observability"
)

var (
	blockMath  = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlineMath = regexp.MustCompile(`\$(.*?)\$`)
)

// Renderer substitutes math spans and parses the result as markdown.
type Renderer struct {
	markup domain.MarkupParser
	math   domain.MathRenderer
	logger *observability.Logger
}

// New creates a renderer from its collaborators.
func New(markup domain.MarkupParser, math domain.MathRenderer, logger *observability.Logger) *Renderer {
	return &Renderer{markup: markup, math: math, logger: logger.WithComponent("render")}
}

// NewDefault creates a renderer using goldmark and HTMLMath.
func NewDefault(logger *observability.Logger) *Renderer {
	return New(NewMarkdown(), NewHTMLMath(), logger)
}

// Render always returns displayable HTML. A failure anywhere in the pipeline
// falls back to parsing the unmodified text without math substitution.
func (r *Renderer) Render(text string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("panic", fmt.Sprint(rec)).Msg("Rendering failed, falling back to plain markup")
			out = r.fallback(text)
		}
	}()

	substituted := blockMath.ReplaceAllStringFunc(text, func(m string) string {
		return r.renderMath(m, blockMath.FindStringSubmatch(m)[1], true)
	})
	substituted = inlineMath.ReplaceAllStringFunc(substituted, func(m string) string {
		return r.renderMath(m, inlineMath.FindStringSubmatch(m)[1], false)
	})

	parsed, err := r.markup.Parse(substituted)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Markup parse failed, falling back")
		return r.fallback(text)
	}
	return parsed
}

// renderMath returns the fragment for expr, or original when it cannot be rendered.
func (r *Renderer) renderMath(original, expr string, display bool) (fragment string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().Str("panic", fmt.Sprint(rec)).Bool("display", display).Msg("Math renderer panicked")
			fragment = original
		}
	}()

	out, err := r.math.Render(expr, display)
	if err != nil {
		r.logger.Debug().Err(err).Str("expression", expr).Bool("display", display).Msg("Leaving expression unrendered")
		return original
	}
	return out
}

func (r *Renderer) fallback(text string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = escaped(text)
		}
	}()

	parsed, err := r.markup.Parse(text)
	if err != nil {
		return escaped(text)
	}
	return parsed
}

func escaped(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}
