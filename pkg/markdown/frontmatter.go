package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// FrontMatter is a leading metadata block delimited by "---" lines.
type FrontMatter struct {
	Raw     string         // YAML between the delimiters
	Fields  map[string]any // decoded Raw; nil if empty or invalid
	EndLine int            // 0-based line of the closing delimiter
}

// Title returns the "title" field, or "" when absent or not a string.
func (fm *FrontMatter) Title() string {
	if fm == nil {
		return ""
	}
	title, _ := fm.Fields["title"].(string)
	return title
}

// SplitFrontMatter separates a leading front matter block from the document
// body. The block opens with "---" on the first line and closes with the next
// "---" or "..." line; without a closing delimiter there is no front matter.
// A YAML decode failure is returned together with the stripped body so callers
// can still render the document.
func SplitFrontMatter(markdown string) (*FrontMatter, string, error) {
	lines := SplitLines(markdown)
	if len(lines) < 2 || strings.TrimRight(lines[0], " \t") != "---" {
		return nil, markdown, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		delim := strings.TrimRight(lines[i], " \t")
		if delim == "---" || delim == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, markdown, nil
	}

	idx := newLineIndex([]byte(markdown))
	body := ""
	if end+1 < idx.count() {
		body = markdown[idx.starts[end+1]:]
	}

	fm := &FrontMatter{
		Raw:     strings.Join(lines[1:end], "\n"),
		EndLine: end,
	}
	if err := yaml.Unmarshal([]byte(fm.Raw), &fm.Fields); err != nil {
		fm.Fields = nil
		return fm, body, fmt.Errorf("%w: YAML: %v", utils.ErrFrontMatter, err)
	}
	return fm, body, nil
}
