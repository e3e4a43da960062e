package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\n\r\nb"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestLineIndex_LineOf(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	idx := newLineIndex(src)

	assert.Equal(t, 4, idx.count())
	assert.Equal(t, len(SplitLines(string(src))), idx.count())

	tests := []struct {
		offset int
		line   int
	}{
		{0, 0},
		{2, 0}, // the '\n' belongs to the line it ends
		{3, 1},
		{5, 1},
		{6, 2},
		{7, 3},
		{8, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.line, idx.lineOf(tt.offset), "offset %d", tt.offset)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "", Truncate("hello", 0))
}
