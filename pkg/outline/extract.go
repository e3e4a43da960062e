// Package outline builds navigable heading outlines from Markdown documents.
package outline

import (
	"strings"
	"unicode"

	"github.com/Sriram-PR/doc-outline/pkg/anchor"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
)

const frontMatterDelimiter = "---"

// Extractor walks the top-level blocks of a document and reports its
// headings. It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	parser markdown.BlockParser
}

// NewExtractor creates an Extractor on top of parser. A nil parser selects the
// goldmark parser.
func NewExtractor(parser markdown.BlockParser) *Extractor {
	if parser == nil {
		parser = markdown.NewGoldmarkParser()
	}
	return &Extractor{parser: parser}
}

var defaultExtractor = NewExtractor(nil)

// ExtractHeadings returns the headings of md up to maxLevel using the goldmark
// parser. See (*Extractor).ExtractHeadings.
func ExtractHeadings(md string, maxLevel int) []HeadingEntry {
	return defaultExtractor.ExtractHeadings(md, maxLevel)
}

// FindHeadingLine returns the source line of the heading whose anchor is
// anchorID using the goldmark parser. See (*Extractor).FindHeadingLine.
func FindHeadingLine(md, anchorID string, maxLevel int) int {
	return defaultExtractor.FindHeadingLine(md, anchorID, maxLevel)
}

// ExtractHeadings returns the headings of md in document order. Headings
// deeper than maxLevel are dropped, front matter is skipped, and underline
// headings point at their text line. Empty input yields an empty result.
func (e *Extractor) ExtractHeadings(md string, maxLevel int) []HeadingEntry {
	var headings []HeadingEntry
	e.walk(md, maxLevel, func(h HeadingEntry) bool {
		headings = append(headings, h)
		return true
	})
	return headings
}

// FindHeadingLine returns the line of the first heading whose anchor id equals
// anchorID, or -1 if there is none. It applies exactly the same rules as
// ExtractHeadings.
func (e *Extractor) FindHeadingLine(md, anchorID string, maxLevel int) int {
	line := -1
	e.walk(md, maxLevel, func(h HeadingEntry) bool {
		if h.AnchorID == anchorID {
			line = h.Line
			return false
		}
		return true
	})
	return line
}

// walk visits each outline heading of md in order until visit returns false.
func (e *Extractor) walk(md string, maxLevel int, visit func(HeadingEntry) bool) {
	if md == "" {
		return
	}

	lines := markdown.SplitLines(md)
	inFrontMatter := false

	for _, block := range e.parser.Parse(md) {
		line := block.Line
		if line < 0 || line >= len(lines) {
			continue
		}
		content := stripMarkers(lines[line])

		if line == 0 && content == frontMatterDelimiter {
			inFrontMatter = true
			continue
		}
		if inFrontMatter {
			if content == frontMatterDelimiter {
				inFrontMatter = false
			}
			continue
		}

		if block.Kind != markdown.KindHeading || block.Level > maxLevel {
			continue
		}

		// underline heading: the text sits one line above
		if line > 0 && (strings.HasPrefix(content, "---") || strings.HasPrefix(content, "===")) {
			line--
			content = stripMarkers(lines[line])
		}

		entry := HeadingEntry{
			Text:     content,
			Level:    block.Level,
			Line:     line,
			AnchorID: anchor.Slug(strings.TrimRightFunc(content, unicode.IsSpace)),
		}
		if !visit(entry) {
			return
		}
	}
}

// stripMarkers removes leading spaces and '#' characters.
func stripMarkers(line string) string {
	return strings.TrimLeft(line, " #")
}
