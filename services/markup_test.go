package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkupMarkdown(t *testing.T) {
	out := RenderMarkup("Hello **world**", MarkupMarkdown)
	assert.Equal(t, MarkupMarkdown, out.Language)
	assert.Contains(t, out.HTML, "<strong>world</strong>")
	assert.Empty(t, out.Warnings)
}

func TestRenderMarkupSanitizesScripts(t *testing.T) {
	out := RenderMarkup("hi <script>alert(1)</script>", MarkupMarkdown)
	assert.NotContains(t, out.HTML, "<script>")
	assert.NotContains(t, out.HTML, "alert(1)</script>")
}

func TestRenderMarkupPlain(t *testing.T) {
	out := RenderMarkup("a < b\nsecond line\n\nnew paragraph", MarkupPlain)
	assert.Equal(t, MarkupPlain, out.Language)
	assert.Contains(t, out.HTML, "a &lt; b")
	assert.Contains(t, out.HTML, "<br>second line")
	assert.Contains(t, out.HTML, "<p>new paragraph</p>")

	// An empty hint renders as plain.
	out = RenderMarkup("text", "")
	assert.Equal(t, MarkupPlain, out.Language)
}

func TestRenderMarkupRestructuredTextFallsBack(t *testing.T) {
	out := RenderMarkup("Title\n=====", MarkupReStructuredText)
	assert.Equal(t, MarkupReStructuredText, out.Language)
	assert.Contains(t, out.HTML, "Title")
	assert.NotEmpty(t, out.Warnings)
}

func TestRenderMarkupUnknownHintWarns(t *testing.T) {
	out := RenderMarkup("text", "org-mode")
	assert.Equal(t, MarkupPlain, out.Language)
	assert.NotEmpty(t, out.Warnings)
}
