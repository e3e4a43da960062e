package markdown

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// SplitLines splits markdown into 0-indexed lines the same way the block
// parser numbers them: a line ends at '\n' and a trailing '\r' is dropped.
func SplitLines(markdown string) []string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// lineIndex maps byte offsets of a source to 0-based line numbers.
type lineIndex struct {
	starts []int // byte offset at which each line begins
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// lineOf returns the line containing offset.
func (li *lineIndex) lineOf(offset int) int {
	// first line start strictly greater than offset, minus one
	return sort.SearchInts(li.starts, offset+1) - 1
}

func (li *lineIndex) count() int {
	return len(li.starts)
}

// Truncate shortens s to at most n characters, never splitting a multi-byte
// UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
