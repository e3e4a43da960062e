package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yuin/goldmark/ast"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Hello World", expected: "hello-world"},
		{name: "trailing punctuation", input: "Hello World!", expected: "hello-world"},
		{name: "leading and trailing spaces", input: "   Padded Title   ", expected: "padded-title"},
		{name: "whitespace run collapses", input: "Tabs\tand   spaces", expected: "tabs-and-spaces"},
		{name: "existing hyphens kept", input: "pre-release notes", expected: "pre-release-notes"},
		{name: "underscore kept", input: "snake_case name", expected: "snake_case-name"},
		{name: "punctuation between words", input: "What's new?", expected: "whats-new"},
		{name: "symbol surrounded by spaces", input: "A & B", expected: "a--b"},
		{name: "markup characters dropped", input: "Use `go test` *now*", expected: "use-go-test-now"},
		{name: "closing hashes", input: "Title #", expected: "title"},
		{name: "digits", input: "Step 1.2", expected: "step-12"},
		{name: "unicode letters", input: "Über Straße", expected: "über-straße"},
		{name: "cjk", input: "日本語 見出し", expected: "日本語-見出し"},
		{name: "only punctuation", input: "!!!", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.input))
		})
	}
}

func TestSlug_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello World!",
		"A & B",
		"  -- Dashed --  ",
		"Über Straße",
		"snake_case name",
		"Use `go test` *now*",
	}

	for _, input := range inputs {
		once := Slug(input)
		assert.Equal(t, once, Slug(once), "slug of %q is not stable", input)
	}
}

func TestIDs_GenerateUsesSlug(t *testing.T) {
	ids := NewIDs()

	first := ids.Generate([]byte("Hello World!"), ast.KindHeading)
	second := ids.Generate([]byte("Hello World!"), ast.KindHeading)

	assert.Equal(t, "hello-world", string(first))
	assert.Equal(t, string(first), string(second), "repeated headings must not get a suffix")

	ids.Put([]byte("hello-world"))
	assert.Equal(t, "hello-world", string(ids.Generate([]byte("Hello World"), ast.KindHeading)))
}
