package analysis

import (
	"rbgraph/internal/engine/syntax"
)

// Walker turns syntax trees into namespaces and references. One Walker
// feeds one Result; trees are processed in the order Walk is called.
type Walker struct {
	result *Result
}

func NewWalker(result *Result) *Walker {
	if result == nil {
		result = NewResult()
	}
	return &Walker{result: result}
}

func (w *Walker) Result() *Result {
	return w.result
}

// Walk processes the root statement sequence of one file.
func (w *Walker) Walk(file string, root *syntax.Body) {
	if root == nil {
		return
	}
	w.walkStatements(file, root.Statements, NoEnclosing)
}

func (w *Walker) walkStatements(file string, stmts []syntax.Node, enclosing int) {
	for _, stmt := range stmts {
		switch def := stmt.(type) {
		case *syntax.ClassDef:
			if def == nil {
				continue
			}
			w.walkNamespace(file, KindClass, def.Identifier, def.Superclass, def.Body, enclosing)
		case *syntax.ModuleDef:
			if def == nil {
				continue
			}
			w.walkNamespace(file, KindModule, def.Identifier, nil, def.Body, enclosing)
		}
	}
}

func (w *Walker) walkNamespace(file string, kind NamespaceKind, ident, superclass syntax.Node, body *syntax.Body, enclosing int) {
	local := Identifier(ident)
	ns := Namespace{
		Kind:           kind,
		Identifier:     local,
		LocalName:      local,
		DeclaredParent: Identifier(superclass),
		File:           file,
		Enclosing:      enclosing,
	}
	parent, nested := w.result.Namespace(enclosing)
	if nested {
		ns.Identifier = parent.LocalName + Separator + local
	} else {
		ns.Enclosing = NoEnclosing
	}

	idx := w.result.AddNamespace(ns)

	if body != nil {
		w.walkStatements(file, body.Statements, idx)
		w.scanDirectStatements(ns.Identifier, body.Statements)
	}

	if nested {
		w.result.AddReference(Reference{From: ns.Identifier, To: parent.Identifier, Kind: NestedIn})
	}
}

func (w *Walker) scanDirectStatements(from string, stmts []syntax.Node) {
	for _, stmt := range stmts {
		kind, target, ok := ResolveStatement(stmt)
		if !ok {
			continue
		}
		w.result.AddReference(Reference{From: from, To: target, Kind: kind})
	}
}

// Analyze walks every tree into a fresh Result.
func Analyze(trees []Tree) *Result {
	w := NewWalker(nil)
	for _, t := range trees {
		w.Walk(t.File, t.Root)
	}
	return w.Result()
}

// Tree pairs a parsed root with the file it came from.
type Tree struct {
	File string
	Root *syntax.Body
}
