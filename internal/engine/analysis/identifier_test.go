package analysis

import (
	"reflect"
	"testing"

	"rbgraph/internal/engine/syntax"
)

func TestIdentifierSegments(t *testing.T) {
	var nilAtom *syntax.ConstantAtom
	tests := []struct {
		name string
		node syntax.Node
		want []string
	}{
		{name: "atom", node: syntax.Const("Foo"), want: []string{"Foo"}},
		{name: "var ref", node: syntax.Ref(syntax.Const("Foo")), want: []string{"Foo"}},
		{name: "path", node: syntax.Path("A", "B", "C"), want: []string{"A", "B", "C"}},
		{name: "top level", node: &syntax.TopLevelConstantPath{Ref: syntax.Const("Foo")}, want: []string{"Foo"}},
		{
			name: "top level path",
			node: &syntax.ConstantPath{Left: &syntax.TopLevelConstantPath{Ref: syntax.Const("A")}, Right: syntax.Const("B")},
			want: []string{"A", "B"},
		},
		{
			name: "path with opaque scope",
			node: &syntax.ConstantPath{Left: &syntax.Opaque{Type: "identifier"}, Right: syntax.Const("B")},
			want: []string{"B"},
		},
		{name: "opaque", node: &syntax.Opaque{Type: "call"}, want: nil},
		{name: "label", node: syntax.Label("foo"), want: nil},
		{name: "nil", node: nil, want: nil},
		{name: "typed nil", node: nilAtom, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IdentifierSegments(tt.node)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("IdentifierSegments() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestIdentifierJoin(t *testing.T) {
	if got := Identifier(syntax.Path("Outer", "Base")); got != "Outer::Base" {
		t.Fatalf("Identifier() = %q", got)
	}
	if got := Identifier(nil); got != "" {
		t.Fatalf("Identifier(nil) = %q, want empty", got)
	}
}
