package outline

// HeadingEntry is one heading of a document outline.
type HeadingEntry struct {
	Text     string         `json:"text" yaml:"text"`
	Level    int            `json:"level" yaml:"level"`
	Line     int            `json:"line" yaml:"line"` // 0-based; the text line for underline headings
	AnchorID string         `json:"anchor_id" yaml:"anchor_id"`
	Children []HeadingEntry `json:"children,omitempty" yaml:"children,omitempty"`
}

// Nest folds a flat, document-ordered heading list into a tree: each entry
// becomes a child of the closest preceding entry with a lower level. The
// input is not modified.
func Nest(entries []HeadingEntry) []HeadingEntry {
	nested, _ := nestFrom(entries, 0, 0)
	return nested
}

func nestFrom(entries []HeadingEntry, i, parentLevel int) ([]HeadingEntry, int) {
	var out []HeadingEntry
	for i < len(entries) && entries[i].Level > parentLevel {
		entry := entries[i]
		entry.Children, i = nestFrom(entries, i+1, entry.Level)
		out = append(out, entry)
	}
	return out, i
}

// Flatten is the inverse of Nest: it returns the entries in document order
// with Children cleared.
func Flatten(entries []HeadingEntry) []HeadingEntry {
	var out []HeadingEntry
	for _, entry := range entries {
		children := entry.Children
		entry.Children = nil
		out = append(out, entry)
		out = append(out, Flatten(children)...)
	}
	return out
}
