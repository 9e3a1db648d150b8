// Package output renders analysis results as diagrams and tables.
package output

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"rbgraph/internal/engine/analysis"
)

// Node is one distinct identifier defined in the analyzed tree. Reopened
// classes collapse into a single node listing every defining file.
type Node struct {
	ID    string
	Kind  analysis.NamespaceKind
	Files []string
}

// Edge is a deduplicated reference between two defined nodes.
type Edge struct {
	From string
	To   string
	Kind analysis.ReferenceKind
}

// Graph is the renderable projection of a Result. References whose
// endpoints were never defined are kept aside in Dangling.
type Graph struct {
	Nodes    []Node
	Edges    []Edge
	Dangling []analysis.Reference

	index map[string]int
}

// Project builds a Graph with nodes sorted by identifier and edges sorted
// by (from, to, kind).
func Project(res *analysis.Result) *Graph {
	g := &Graph{index: make(map[string]int)}
	if res == nil {
		return g
	}

	files := make(map[string]map[string]bool)
	kinds := make(map[string]analysis.NamespaceKind)
	for _, ns := range res.Namespaces {
		if _, ok := kinds[ns.Identifier]; !ok {
			kinds[ns.Identifier] = ns.Kind
			files[ns.Identifier] = make(map[string]bool)
		}
		if ns.File != "" {
			files[ns.Identifier][ns.File] = true
		}
	}

	ids := make([]string, 0, len(kinds))
	for id := range kinds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		node := Node{ID: id, Kind: kinds[id]}
		for file := range files[id] {
			node.Files = append(node.Files, file)
		}
		sort.Strings(node.Files)
		g.Nodes = append(g.Nodes, node)
		g.index[id] = i
	}

	seen := make(map[Edge]bool, len(res.References))
	for _, ref := range res.References {
		if !g.Has(ref.From) || !g.Has(ref.To) {
			g.Dangling = append(g.Dangling, ref)
			continue
		}
		edge := Edge{From: ref.From, To: ref.To, Kind: ref.Kind}
		if seen[edge] {
			continue
		}
		seen[edge] = true
		g.Edges = append(g.Edges, edge)
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})
	return g
}

func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// sanitizeID maps an identifier such as Blog::Post to a diagram-safe token.
func sanitizeID(id string) string {
	if id == "" {
		return "n"
	}
	var b strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		return "n_" + out
	}
	return out
}

// makeIDs assigns unique sanitized tokens, suffixing collisions.
func makeIDs(nodes []Node) map[string]string {
	ids := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		base := sanitizeID(node.ID)
		candidate := base
		for i := 2; used[candidate]; i++ {
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		used[candidate] = true
		ids[node.ID] = candidate
	}
	return ids
}
