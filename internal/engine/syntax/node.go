// Package syntax defines the language-neutral tree the analyzer walks.
//
// Node is a closed sum type: every variant lives in this package and carries
// the unexported node marker, so a type switch over the variants below is
// exhaustive. Constructs outside the vocabulary are represented by Opaque.
package syntax

// Node is implemented by every syntax tree variant.
type Node interface {
	Kind() string
	node()
}

// ConstantAtom is a single constant name such as Foo.
type ConstantAtom struct {
	Name string
}

// ConstantPath is a scoped constant such as Outer::Inner.
type ConstantPath struct {
	Left  Node
	Right Node
}

// TopLevelConstantPath is a root-scoped constant such as ::Foo.
type TopLevelConstantPath struct {
	Ref Node
}

// VariableOrConstRef wraps a constant used in expression position.
type VariableOrConstRef struct {
	Inner Node
}

// ClassDef is a class definition. Superclass and Body are nil when absent.
type ClassDef struct {
	Identifier Node
	Superclass Node
	Body       *Body
}

// ModuleDef is a module definition. Body is nil when absent.
type ModuleDef struct {
	Identifier Node
	Body       *Body
}

// Body is an ordered statement sequence.
type Body struct {
	Statements []Node
}

// Command is a receiver-less method call such as `include Foo`.
type Command struct {
	Name      string
	Arguments *ArgumentList
}

// ArgumentList holds positional arguments and an optional block.
type ArgumentList struct {
	Positional []Node
	Block      Node
}

// LabelLiteral is a bare symbol-like token (:posts, class_name:).
type LabelLiteral struct {
	Text string
}

// StringLiteral is a quoted string without interpolation.
type StringLiteral struct {
	Text string
}

// OptionEntry is one key/value pair of an OptionMap.
type OptionEntry struct {
	Key   Node
	Value Node
}

// OptionMap is an ordered set of keyword-style options.
type OptionMap struct {
	Entries []OptionEntry
}

// Opaque stands in for any construct the analyzer has no rule for.
// Type records the source grammar's node type for debugging.
type Opaque struct {
	Type string
}

const (
	KindConstantAtom         = "constant_atom"
	KindConstantPath         = "constant_path"
	KindTopLevelConstantPath = "top_level_constant_path"
	KindVariableOrConstRef   = "variable_or_const_ref"
	KindClassDef             = "class_def"
	KindModuleDef            = "module_def"
	KindBody                 = "body"
	KindCommand              = "command"
	KindArgumentList         = "argument_list"
	KindLabelLiteral         = "label_literal"
	KindStringLiteral        = "string_literal"
	KindOptionMap            = "option_map"
	KindOpaque               = "opaque"
)

func (*ConstantAtom) Kind() string         { return KindConstantAtom }
func (*ConstantPath) Kind() string         { return KindConstantPath }
func (*TopLevelConstantPath) Kind() string { return KindTopLevelConstantPath }
func (*VariableOrConstRef) Kind() string   { return KindVariableOrConstRef }
func (*ClassDef) Kind() string             { return KindClassDef }
func (*ModuleDef) Kind() string            { return KindModuleDef }
func (*Body) Kind() string                 { return KindBody }
func (*Command) Kind() string              { return KindCommand }
func (*ArgumentList) Kind() string         { return KindArgumentList }
func (*LabelLiteral) Kind() string         { return KindLabelLiteral }
func (*StringLiteral) Kind() string        { return KindStringLiteral }
func (*OptionMap) Kind() string            { return KindOptionMap }
func (*Opaque) Kind() string               { return KindOpaque }

func (*ConstantAtom) node()         {}
func (*ConstantPath) node()         {}
func (*TopLevelConstantPath) node() {}
func (*VariableOrConstRef) node()   {}
func (*ClassDef) node()             {}
func (*ModuleDef) node()            {}
func (*Body) node()                 {}
func (*Command) node()              {}
func (*ArgumentList) node()         {}
func (*LabelLiteral) node()         {}
func (*StringLiteral) node()        {}
func (*OptionMap) node()            {}
func (*Opaque) node()               {}

// IsConstantRef reports whether n is one of the constant-reference shapes.
func IsConstantRef(n Node) bool {
	switch n.(type) {
	case *ConstantAtom, *ConstantPath, *TopLevelConstantPath, *VariableOrConstRef:
		return true
	default:
		return false
	}
}

// Len returns the statement count; a nil body has none.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Statements)
}
