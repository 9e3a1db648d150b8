package analysis

import (
	"strings"

	"rbgraph/internal/engine/syntax"
)

// Separator joins constant segments.
const Separator = "::"

// IdentifierSegments flattens a constant-reference subtree into its name
// segments. Root scoping is dropped, unknown shapes contribute nothing.
func IdentifierSegments(n syntax.Node) []string {
	return appendSegments(nil, n)
}

func appendSegments(segments []string, n syntax.Node) []string {
	switch v := n.(type) {
	case *syntax.ConstantAtom:
		if v == nil {
			return segments
		}
		return append(segments, v.Name)
	case *syntax.TopLevelConstantPath:
		if v == nil {
			return segments
		}
		return appendSegments(segments, v.Ref)
	case *syntax.VariableOrConstRef:
		if v == nil {
			return segments
		}
		return appendSegments(segments, v.Inner)
	case *syntax.ConstantPath:
		if v == nil {
			return segments
		}
		segments = appendSegments(segments, v.Left)
		return appendSegments(segments, v.Right)
	default:
		return segments
	}
}

// Identifier returns the segments of n joined with Separator.
func Identifier(n syntax.Node) string {
	return strings.Join(IdentifierSegments(n), Separator)
}
