package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// BlockKind distinguishes heading blocks from everything else.
type BlockKind int

const (
	KindOther BlockKind = iota
	KindHeading
)

func (k BlockKind) String() string {
	if k == KindHeading {
		return "heading"
	}
	return "other"
}

// Block is a top-level block of a parsed document.
type Block struct {
	Kind  BlockKind
	Line  int // 0-based source line; the underline line for setext headings
	Level int // 1..6, headings only
}

// BlockParser parses Markdown into its top-level blocks in document order.
// Line numbers must agree with SplitLines.
type BlockParser interface {
	Parse(source string) []Block
}

// GoldmarkParser is a BlockParser backed by goldmark with GFM enabled.
type GoldmarkParser struct {
	parser parser.Parser
}

var _ BlockParser = (*GoldmarkParser)(nil)

// NewGoldmarkParser creates a GoldmarkParser.
func NewGoldmarkParser() *GoldmarkParser {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &GoldmarkParser{parser: md.Parser()}
}

// Parse returns the top-level blocks of source.
func (p *GoldmarkParser) Parse(source string) []Block {
	if source == "" {
		return nil
	}

	src := []byte(source)
	idx := newLineIndex(src)
	lines := SplitLines(source)
	doc := p.parser.Parse(text.NewReader(src))

	var blocks []Block
	prevEnd := -1
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		start, end := measure(n, idx)
		block := Block{Kind: KindOther}

		switch node := n.(type) {
		case *ast.Heading:
			block.Kind = KindHeading
			block.Level = node.Level
			if start >= 0 && !isATXHeadingLine(lines[start]) {
				// setext heading, reported at its underline
				end++
				start = end
			}
		case *ast.FencedCodeBlock:
			if node.Info == nil && start >= 0 {
				start-- // opening fence precedes the first content line
			}
		}

		if start < 0 {
			start = nextContentLine(lines, prevEnd+1)
		}
		if end < start {
			end = start
		}
		if _, ok := n.(*ast.FencedCodeBlock); ok && end+1 < len(lines) && isCodeFence(lines[end+1]) {
			end++
		}

		start = clamp(start, idx.count()-1)
		end = clamp(end, idx.count()-1)
		block.Line = start
		blocks = append(blocks, block)
		prevEnd = end
	}

	return blocks
}

// measure returns the first and last source line covered by the segments of
// n and its descendants, or -1, -1 when n carries no segments at all
// (thematic breaks, empty headings, empty fences).
func measure(n ast.Node, idx *lineIndex) (first, last int) {
	first, last = -1, -1
	mark := func(seg text.Segment) {
		if seg.Stop <= seg.Start {
			return
		}
		s, e := idx.lineOf(seg.Start), idx.lineOf(seg.Stop-1)
		if first < 0 || s < first {
			first = s
		}
		if e > last {
			last = e
		}
	}

	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			mark(node.Segment)
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				mark(node.Segments.At(i))
			}
		case *ast.FencedCodeBlock:
			if node.Info != nil {
				mark(node.Info.Segment)
			}
		case *ast.HTMLBlock:
			if node.HasClosure() {
				mark(node.ClosureLine)
			}
		}
		if c.Type() == ast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				mark(lines.At(i))
			}
		}
		return ast.WalkContinue, nil
	})

	return first, last
}

// nextContentLine returns the first non-blank line at or after from.
func nextContentLine(lines []string, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return from
}

// isATXHeadingLine reports whether line opens an ATX heading: up to three
// spaces, one to six '#', then whitespace or end of line.
func isATXHeadingLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return false
	}
	return level == len(trimmed) || trimmed[level] == ' ' || trimmed[level] == '\t'
}

func isCodeFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < 0 {
		return 0
	}
	return v
}
