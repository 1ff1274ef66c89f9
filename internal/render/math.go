package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	beginEnv = regexp.MustCompile(`\\begin\{([^}]*)\}`)
	endEnv   = regexp.MustCompile(`\\end\{([^}]*)\}`)

	// texEntities keeps markdown from touching expression bodies.
	texEntities = strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`\`, "&#92;",
		`$`, "&#36;",
		`_`, "&#95;",
		`*`, "&#42;",
		"`", "&#96;",
		`[`, "&#91;",
		`]`, "&#93;",
		`~`, "&#126;",
	)
)

// HTMLMath is a domain.MathRenderer that emits TeX wrapped in marker elements
// for client-side typesetting. Expressions that cannot be typeset are rejected.
type HTMLMath struct{}

// NewHTMLMath creates the math renderer.
func NewHTMLMath() *HTMLMath {
	return &HTMLMath{}
}

// Render returns the HTML fragment for expression.
func (HTMLMath) Render(expression string, displayMode bool) (string, error) {
	expr := strings.TrimSpace(expression)
	if err := checkTeX(expr); err != nil {
		return "", err
	}

	// Display math uses an inline element too: a leading <div> would open a
	// markdown HTML block and swallow the lines that follow it.
	if displayMode {
		expr = strings.Join(strings.Fields(expr), " ")
		return `<span class="math-display">` + texEntities.Replace(expr) + `</span>`, nil
	}
	return `<span class="math-inline">` + texEntities.Replace(expr) + `</span>`, nil
}

func checkTeX(expr string) error {
	if expr == "" {
		return errors.New("empty expression")
	}

	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\\':
			i++ // skip the escaped character, e.g. \{ or \\
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("unexpected '}' at offset %d", i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%d unclosed '{'", depth)
	}

	begins := beginEnv.FindAllStringSubmatch(expr, -1)
	ends := endEnv.FindAllStringSubmatch(expr, -1)
	if len(begins) != len(ends) {
		return fmt.Errorf("%d \\begin but %d \\end", len(begins), len(ends))
	}
	for i := range begins {
		if begins[i][1] != ends[len(ends)-1-i][1] {
			return fmt.Errorf("environment %q closed by %q", begins[i][1], ends[len(ends)-1-i][1])
		}
	}

	if l, r := strings.Count(expr, `\left`), strings.Count(expr, `\right`); l != r {
		return fmt.Errorf("%d \\left but %d \\right", l, r)
	}
	return nil
}
