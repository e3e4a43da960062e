package outline

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// outlineSelector picks the heading levels that take part in a Markdown outline.
const outlineSelector = "h1, h2, h3, h4"

// HTMLRenderer renders Markdown to HTML.
type HTMLRenderer interface {
	RenderHTML(markdown string, opts markdown.Options) string
}

// RenderOutline turns the headings of a rendered HTML document into an
// indented Markdown list of links, one "* [text](#id)" line per heading.
// The shallowest heading kept is not indented; each deeper level adds a tab.
// It fails with utils.ErrEmptyInput when no h1-h4 at or above maxLevel exists.
func RenderOutline(renderedHTML string, maxLevel int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return "", fmt.Errorf("%w: HTML document: %v", utils.ErrParsing, err)
	}

	var headings []HeadingEntry
	doc.Find(outlineSelector).Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) != 2 || name[1] < '1' || name[1] > '6' {
			return
		}
		level := int(name[1] - '0')
		if level > maxLevel {
			return
		}
		id, _ := s.Attr("id")
		headings = append(headings, HeadingEntry{
			Text:     strings.TrimSpace(s.Text()),
			Level:    level,
			AnchorID: id,
		})
	})

	if len(headings) == 0 {
		return "", fmt.Errorf("%w: no headings to outline", utils.ErrEmptyInput)
	}

	minLevel := headings[0].Level
	for _, h := range headings[1:] {
		minLevel = min(minLevel, h.Level)
	}
	startOffset := max(0, minLevel-1)

	var sb strings.Builder
	for _, h := range headings {
		if depth := h.Level - startOffset; depth > 0 {
			sb.WriteString(strings.Repeat("\t", depth-1))
		}
		fmt.Fprintf(&sb, "* [%s](#%s)\n", h.Text, h.AnchorID)
	}

	return sb.String(), nil
}

// MarkdownOutline renders md with heading identifiers switched on and returns
// its Markdown outline. The caller's options are otherwise honored.
func MarkdownOutline(r HTMLRenderer, md string, opts markdown.Options, maxLevel int) (string, error) {
	opts.AutoHeaderIdentifiers = true
	return RenderOutline(r.RenderHTML(md, opts), maxLevel)
}
