package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNest(t *testing.T) {
	flat := []HeadingEntry{
		{Text: "A", Level: 1},
		{Text: "B", Level: 2},
		{Text: "C", Level: 3},
		{Text: "D", Level: 2},
		{Text: "E", Level: 1},
	}

	nested := Nest(flat)

	assert.Equal(t, []HeadingEntry{
		{Text: "A", Level: 1, Children: []HeadingEntry{
			{Text: "B", Level: 2, Children: []HeadingEntry{
				{Text: "C", Level: 3},
			}},
			{Text: "D", Level: 2},
		}},
		{Text: "E", Level: 1},
	}, nested)
	assert.Nil(t, flat[0].Children, "input must not be modified")
}

func TestNest_SkippedLevels(t *testing.T) {
	nested := Nest([]HeadingEntry{
		{Text: "Deep", Level: 3},
		{Text: "Top", Level: 1},
		{Text: "Skip", Level: 4},
	})

	assert.Equal(t, []HeadingEntry{
		{Text: "Deep", Level: 3},
		{Text: "Top", Level: 1, Children: []HeadingEntry{{Text: "Skip", Level: 4}}},
	}, nested)
}

func TestNestFlatten_Inverse(t *testing.T) {
	flat := ExtractHeadings("# A\n## B\n### C\n## D\n# E\n#### F\n", 6)

	assert.Equal(t, flat, Flatten(Nest(flat)))
	assert.Empty(t, Nest(nil))
	assert.Empty(t, Flatten(nil))
}
