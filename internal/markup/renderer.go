// Package markup compiles post bodies into HTML.
//
// Bodies are CommonMark with GitHub extensions, plus two additions: fenced code
// blocks accept a meta string selecting highlighted lines and words, and a block
// written as a capitalized tag on its own line (<Callout type="info">…</Callout>)
// is rendered by a registered component instead of being passed through as HTML.
package markup

import (
	"bytes"
	"fmt"
	"html"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer is safe for concurrent use once constructed.
type Renderer struct {
	md         goldmark.Markdown
	components *Components
	classes    ElementClasses
	style      string
}

type Option func(*Renderer)

// WithComponents replaces the built-in component registry.
func WithComponents(c *Components) Option {
	return func(r *Renderer) { r.components = c }
}

// WithClasses replaces the per-element class mapping.
func WithClasses(c ElementClasses) Option {
	return func(r *Renderer) { r.classes = c }
}

// WithStyle selects the chroma style used by StylesCSS.
func WithStyle(name string) Option {
	return func(r *Renderer) { r.style = name }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		components: DefaultComponents(),
		classes:    DefaultClasses,
		style:      "github-dark",
	}
	for _, opt := range opts {
		opt(r)
	}

	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&componentExtension{registry: r.components, convert: r.Render},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&classTransformer{classes: r.classes}, 100)),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 200)),
		),
	)
	return r
}

// Render compiles body to HTML. Component failures are rendered inline and do
// not surface here; an error means the document as a whole could not be built.
func (r *Renderer) Render(body []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// StylesCSS returns the stylesheet for highlighted code and component errors.
func (r *Renderer) StylesCSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(r.style)); err != nil {
		return "", fmt.Errorf("write chroma css for style %q: %w", r.style, err)
	}
	buf.WriteString(extraCSS)
	return buf.String(), nil
}

const extraCSS = `
[data-code-figure] pre { overflow-x: auto; padding: 1rem 0; border-radius: 0.5rem; }
[data-line] { display: inline-block; width: 100%; padding: 0 1rem; }
[data-line-numbers] { counter-reset: line; }
[data-line-numbers] > [data-line]::before { counter-increment: line; content: counter(line); display: inline-block; width: 1.5rem; margin-right: 1rem; text-align: right; opacity: 0.5; }
[data-highlighted-line] { background: rgba(200, 200, 255, 0.1); }
[data-highlighted-chars] { background: rgba(200, 200, 255, 0.2); border-radius: 0.25rem; padding: 0 0.1rem; }
[data-code-title] { font-family: monospace; font-size: 0.875rem; padding: 0.5rem 1rem; opacity: 0.8; }
.component-error { border: 1px solid #f87171; color: #fca5a5; padding: 0.75rem 1rem; border-radius: 0.5rem; margin: 1rem 0; }
`

// ErrorHTML is the inline block shown in place of content that failed to render.
func ErrorHTML(what string, err error) template.HTML {
	return template.HTML(fmt.Sprintf(`<div class="component-error" role="alert">Error rendering %s: %s</div>`,
		html.EscapeString(what), html.EscapeString(err.Error())))
}
