// # internal/engine/parser/types.go
package parser

import (
	"time"

	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/engine/syntax"
)

// SourceFile is one successfully parsed file, already lowered to the
// analyzer's syntax tree.
type SourceFile struct {
	Path     string
	Root     *syntax.Body
	Bytes    int
	ParsedAt time.Time
}

// Tree adapts the file for the namespace walker.
func (f *SourceFile) Tree() analysis.Tree {
	return analysis.Tree{File: f.Path, Root: f.Root}
}

// LanguageSpec describes which paths the Ruby parser accepts.
type LanguageSpec struct {
	Extensions       []string
	TestFileSuffixes []string
}

// DefaultRubySpec covers plain Ruby sources and the usual spec/test naming.
func DefaultRubySpec() LanguageSpec {
	return LanguageSpec{
		Extensions:       []string{".rb"},
		TestFileSuffixes: []string{"_spec.rb", "_test.rb"},
	}
}

type Location struct {
	File   string
	Line   int
	Column int
}
