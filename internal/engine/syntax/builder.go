package syntax

// Small constructors used by tests and by the tree-sitter lowering.

func Const(name string) *ConstantAtom { return &ConstantAtom{Name: name} }

// Ref wraps a constant in expression position.
func Ref(inner Node) *VariableOrConstRef { return &VariableOrConstRef{Inner: inner} }

// Path builds Left::Right::... from the given segment names.
func Path(names ...string) Node {
	if len(names) == 0 {
		return nil
	}
	var out Node = Const(names[0])
	for _, name := range names[1:] {
		out = &ConstantPath{Left: out, Right: Const(name)}
	}
	return out
}

func Label(text string) *LabelLiteral { return &LabelLiteral{Text: text} }

func Str(text string) *StringLiteral { return &StringLiteral{Text: text} }

func Block(stmts ...Node) *Body { return &Body{Statements: stmts} }

// Call builds a Command with positional arguments only.
func Call(name string, args ...Node) *Command {
	return &Command{Name: name, Arguments: &ArgumentList{Positional: args}}
}

// Options builds an OptionMap from alternating key/value nodes.
func Options(kv ...Node) *OptionMap {
	m := &OptionMap{}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Entries = append(m.Entries, OptionEntry{Key: kv[i], Value: kv[i+1]})
	}
	return m
}
