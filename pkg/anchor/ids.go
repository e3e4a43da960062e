package anchor

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// IDs is a goldmark parser.IDs that assigns heading ids with Slug.
// Unlike goldmark's default generator it never appends "-1", "-2", ... to
// repeated ids, matching the outline's anchors one-to-one.
type IDs struct{}

var _ parser.IDs = (*IDs)(nil)

// NewIDs returns an id generator for goldmark's auto heading id option.
func NewIDs() *IDs {
	return &IDs{}
}

// Generate returns the slug of value.
func (s *IDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(Slug(string(value)))
}

// Put is a no-op; explicit ids do not influence generated ones.
func (s *IDs) Put(value []byte) {}
