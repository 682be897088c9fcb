package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gitlab.com/golang-commonmark/markdown"
)

// Markup languages accepted as hints and reported back on rendering.
const (
	MarkupPlain            = "plain"
	MarkupMarkdown         = "markdown"
	MarkupReStructuredText = "restructuredtext"
)

var (
	markdownParser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))
	markupPolicy   = bluemonday.UGCPolicy()
)

// RenderedMarkup is the result of rendering a free-text field. Warnings are
// surfaced to the caller but never block saving the underlying record.
type RenderedMarkup struct {
	Language string   `json:"language"`
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings,omitempty"`
}

// RenderMarkup renders text to sanitized HTML. The hint selects the
// language; an empty hint renders as plain text. reStructuredText has no
// in-process renderer, so it falls back to plain with a warning.
func RenderMarkup(text, languageHint string) RenderedMarkup {
	switch languageHint {
	case MarkupMarkdown:
		rendered := markdownParser.RenderToString([]byte(text))
		return RenderedMarkup{
			Language: MarkupMarkdown,
			HTML:     markupPolicy.Sanitize(rendered),
		}
	case MarkupReStructuredText:
		out := renderPlain(text)
		out.Language = MarkupReStructuredText
		out.Warnings = append(out.Warnings,
			"reStructuredText rendering is not available; displayed as plain text")
		return out
	case MarkupPlain, "":
		return renderPlain(text)
	default:
		out := renderPlain(text)
		out.Warnings = append(out.Warnings, "unknown markup language "+languageHint)
		return out
	}
}

func renderPlain(text string) RenderedMarkup {
	var b strings.Builder
	for i, paragraph := range strings.Split(text, "\n\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(paragraph), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return RenderedMarkup{Language: MarkupPlain, HTML: b.String()}
}
