package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"rbgraph/internal/engine/syntax"
)

// Ruby grammar node types the lowering understands.
const (
	nodeProgram         = "program"
	nodeClass           = "class"
	nodeModule          = "module"
	nodeBodyStatement   = "body_statement"
	nodeConstant        = "constant"
	nodeScopeResolution = "scope_resolution"
	nodeCall            = "call"
	nodeIdentifier      = "identifier"
	nodeArgumentList    = "argument_list"
	nodePair            = "pair"
	nodeHash            = "hash"
	nodeSimpleSymbol    = "simple_symbol"
	nodeHashKeySymbol   = "hash_key_symbol"
	nodeString          = "string"
	nodeStringContent   = "string_content"
	nodeEscapeSequence  = "escape_sequence"
)

// LoweringContext carries the source buffer while a tree-sitter tree is
// converted into syntax nodes.
type LoweringContext struct {
	Source []byte
}

func (c *LoweringContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *LoweringContext) Location(file string, node *sitter.Node) Location {
	return Location{
		File:   file,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

// Lower converts a Ruby program node into the analyzer's statement tree.
func Lower(root *sitter.Node, source []byte) *syntax.Body {
	c := &LoweringContext{Source: source}
	return c.lowerBody(root)
}

// lowerBody turns the named, non-extra children of node into statements.
func (c *LoweringContext) lowerBody(node *sitter.Node) *syntax.Body {
	body := &syntax.Body{}
	if node == nil {
		return body
	}
	for _, child := range namedChildren(node) {
		body.Statements = append(body.Statements, c.lowerExpression(child))
	}
	return body
}

// lowerExpression handles a node in statement or value position.
func (c *LoweringContext) lowerExpression(node *sitter.Node) syntax.Node {
	if node == nil {
		return &syntax.Opaque{Type: "missing"}
	}
	switch node.Kind() {
	case nodeClass:
		return c.lowerClass(node)
	case nodeModule:
		return c.lowerModule(node)
	case nodeConstant:
		return syntax.Ref(syntax.Const(c.Text(node)))
	case nodeScopeResolution:
		return c.lowerScopeResolution(node)
	case nodeCall:
		return c.lowerCall(node)
	case nodeHash:
		return c.lowerHash(node)
	case nodeSimpleSymbol:
		return syntax.Label(strings.TrimPrefix(c.Text(node), ":"))
	case nodeHashKeySymbol:
		return syntax.Label(c.Text(node))
	case nodeString:
		return c.lowerString(node)
	default:
		return &syntax.Opaque{Type: node.Kind()}
	}
}

// lowerName handles a constant in definition-name position, where it is not
// wrapped as a value reference.
func (c *LoweringContext) lowerName(node *sitter.Node) syntax.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case nodeConstant:
		return syntax.Const(c.Text(node))
	case nodeScopeResolution:
		return c.lowerScopeResolution(node)
	default:
		return &syntax.Opaque{Type: node.Kind()}
	}
}

func (c *LoweringContext) lowerScopeResolution(node *sitter.Node) syntax.Node {
	name := node.ChildByFieldName("name")
	var right syntax.Node = &syntax.Opaque{Type: "missing"}
	if name != nil && name.Kind() == nodeConstant {
		right = syntax.Const(c.Text(name))
	} else if name != nil {
		right = &syntax.Opaque{Type: name.Kind()}
	}

	scope := node.ChildByFieldName("scope")
	if scope == nil {
		return &syntax.TopLevelConstantPath{Ref: right}
	}
	return &syntax.ConstantPath{Left: c.lowerExpression(scope), Right: right}
}

func (c *LoweringContext) lowerClass(node *sitter.Node) syntax.Node {
	def := &syntax.ClassDef{Identifier: c.lowerName(node.ChildByFieldName("name"))}
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		if expr := firstNamedChild(superclass); expr != nil {
			def.Superclass = c.lowerExpression(expr)
		}
	}
	def.Body = c.definitionBody(node)
	return def
}

func (c *LoweringContext) lowerModule(node *sitter.Node) syntax.Node {
	return &syntax.ModuleDef{
		Identifier: c.lowerName(node.ChildByFieldName("name")),
		Body:       c.definitionBody(node),
	}
}

// definitionBody returns nil for `class Foo; end`, matching a definition
// without a body.
func (c *LoweringContext) definitionBody(node *sitter.Node) *syntax.Body {
	body := node.ChildByFieldName("body")
	if body == nil {
		for _, child := range namedChildren(node) {
			if child.Kind() == nodeBodyStatement {
				body = child
				break
			}
		}
	}
	if body == nil {
		return nil
	}
	return c.lowerBody(body)
}

func (c *LoweringContext) lowerCall(node *sitter.Node) syntax.Node {
	if node.ChildByFieldName("receiver") != nil {
		return &syntax.Opaque{Type: nodeCall}
	}
	method := node.ChildByFieldName("method")
	if method == nil || method.Kind() != nodeIdentifier {
		return &syntax.Opaque{Type: nodeCall}
	}

	args := node.ChildByFieldName("arguments")
	block := node.ChildByFieldName("block")
	if args == nil && block == nil {
		return &syntax.Opaque{Type: nodeCall}
	}

	list := c.lowerArguments(args)
	if block != nil {
		list.Block = c.lowerBlock(block)
	}
	return &syntax.Command{Name: c.Text(method), Arguments: list}
}

// lowerArguments keeps positional order; keyword pairs are gathered into a
// single OptionMap placed where the first pair appeared.
func (c *LoweringContext) lowerArguments(node *sitter.Node) *syntax.ArgumentList {
	list := &syntax.ArgumentList{}
	if node == nil {
		return list
	}
	var options *syntax.OptionMap
	for _, child := range namedChildren(node) {
		if child.Kind() == nodePair {
			if options == nil {
				options = &syntax.OptionMap{}
				list.Positional = append(list.Positional, options)
			}
			options.Entries = append(options.Entries, c.lowerPair(child))
			continue
		}
		list.Positional = append(list.Positional, c.lowerExpression(child))
	}
	return list
}

func (c *LoweringContext) lowerBlock(node *sitter.Node) syntax.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return c.lowerBody(body)
	}
	return &syntax.Opaque{Type: node.Kind()}
}

func (c *LoweringContext) lowerHash(node *sitter.Node) syntax.Node {
	options := &syntax.OptionMap{}
	for _, child := range namedChildren(node) {
		if child.Kind() != nodePair {
			continue
		}
		options.Entries = append(options.Entries, c.lowerPair(child))
	}
	return options
}

func (c *LoweringContext) lowerPair(node *sitter.Node) syntax.OptionEntry {
	return syntax.OptionEntry{
		Key:   c.lowerExpression(node.ChildByFieldName("key")),
		Value: c.lowerExpression(node.ChildByFieldName("value")),
	}
}

// lowerString accepts only literal strings; interpolation makes the value
// opaque.
func (c *LoweringContext) lowerString(node *sitter.Node) syntax.Node {
	var b strings.Builder
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case nodeStringContent, nodeEscapeSequence:
			b.WriteString(c.Text(child))
		default:
			return &syntax.Opaque{Type: nodeString}
		}
	}
	return syntax.Str(b.String())
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	count := node.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil || child.IsExtra() {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// firstError locates the first ERROR or MISSING node for diagnostics.
func firstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}
