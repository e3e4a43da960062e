// Package markdown adapts goldmark to the outline core: a block parser that
// reports source lines and an HTML renderer that never fails.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkHtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Sriram-PR/doc-outline/pkg/anchor"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// maxLoggedMarkdown caps how much of a failing document goes into the log.
const maxLoggedMarkdown = 10000

const renderErrorHTML = `<h1>Unable to render Markdown Document</h1>

<p>
   An error occurred trying to parse the Markdown document to HTML:
</p>

<b style="font-size: 1.2em">%s</b>
`

// Options controls Markdown to HTML rendering.
type Options struct {
	NoHTML                bool // omit raw HTML instead of passing it through
	RenderLinksAsExternal bool // open absolute http(s) links in a new window
	AutoHeaderIdentifiers bool // assign heading ids with anchor.Slug
}

// converter is the part of goldmark.Markdown the renderer needs.
type converter interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// Renderer converts Markdown to HTML with goldmark.
type Renderer struct {
	log   *logrus.Entry
	build func(Options) converter
}

// NewRenderer creates a Renderer that logs through log.
func NewRenderer(log *logrus.Logger) *Renderer {
	if log == nil {
		log = logrus.New()
	}
	return &Renderer{
		log:   log.WithField("component", "renderer"),
		build: newGoldmark,
	}
}

func newGoldmark(opts Options) converter {
	var parserOpts []parser.Option
	if opts.AutoHeaderIdentifiers {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	rendererOpts := []renderer.Option{goldmarkHtml.WithXHTML()}
	if !opts.NoHTML {
		rendererOpts = append(rendererOpts, goldmarkHtml.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

// RenderHTML renders markdown to an HTML fragment. Front matter is not
// rendered. If conversion fails the error is logged with the (truncated)
// document and an HTML error fragment is returned instead.
func (r *Renderer) RenderHTML(markdown string, opts Options) (out string) {
	_, body, err := SplitFrontMatter(markdown)
	if err != nil {
		r.log.WithError(err).Debug("Front matter is not valid YAML, rendering body only")
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = r.fallback(markdown, fmt.Errorf("%w: panic: %v", utils.ErrRender, rec))
		}
	}()

	ctx := parser.NewContext(parser.WithIDs(anchor.NewIDs()))
	var buf bytes.Buffer
	if err := r.build(opts).Convert([]byte(body), &buf, parser.WithContext(ctx)); err != nil {
		return r.fallback(markdown, fmt.Errorf("%w: %v", utils.ErrRender, err))
	}
	out = buf.String()

	if opts.RenderLinksAsExternal {
		rewritten, err := RewriteExternalLinks(out)
		if err != nil {
			r.log.WithError(err).Warn("Unable to mark external links, keeping rendered HTML")
			return out
		}
		out = rewritten
	}

	return out
}

func (r *Renderer) fallback(markdown string, err error) string {
	r.log.WithError(err).WithFields(logrus.Fields{
		"error_category": utils.CategorizeError(err),
		"markdown":       Truncate(markdown, maxLoggedMarkdown),
	}).Warn("Unable to render Markdown document")
	return fmt.Sprintf(renderErrorHTML, html.EscapeString(err.Error()))
}
