package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"tarot-reading/internal/ports/output"
)

var _ output.Renderer = (*Renderer)(nil)

// Renderer converts model output into HTML. Single newlines become <br>.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer func
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Render func
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fallback wraps text in an escaped <pre> block
func Fallback(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}

// RenderOrFallback never fails; a renderer error yields the escaped raw text
func RenderOrFallback(r output.Renderer, text string) string {
	if r == nil {
		return Fallback(text)
	}
	out, err := r.Render(text)
	if err != nil {
		return Fallback(text)
	}
	return out
}
