package output

import (
	"fmt"
	"strings"

	"rbgraph/internal/engine/analysis"
)

var mermaidArrow = map[analysis.ReferenceKind]string{
	analysis.SubclassOf: "==>",
	analysis.NestedIn:   "-.->",
	analysis.Includes:   "-.->",
	analysis.BelongsTo:  "-->",
	analysis.HasMany:    "-->",
}

type MermaidGenerator struct {
	graph *Graph
}

func NewMermaidGenerator(g *Graph) *MermaidGenerator {
	return &MermaidGenerator{graph: g}
}

// Generate renders a flowchart; modules get the subroutine shape.
func (m *MermaidGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("flowchart BT\n")

	ids := makeIDs(m.graph.Nodes)
	var classes, modules []string
	for _, node := range m.graph.Nodes {
		label := escapeMermaidLabel(node.ID)
		if node.Kind == analysis.KindModule {
			fmt.Fprintf(&b, "  %s[[\"%s\"]]\n", ids[node.ID], label)
			modules = append(modules, ids[node.ID])
			continue
		}
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", ids[node.ID], label)
		classes = append(classes, ids[node.ID])
	}

	if len(m.graph.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, edge := range m.graph.Edges {
		fmt.Fprintf(&b, "  %s %s|%s| %s\n", ids[edge.From], mermaidArrow[edge.Kind], edge.Kind, ids[edge.To])
	}

	if len(classes) > 0 || len(modules) > 0 {
		b.WriteString("\n")
	}
	if len(classes) > 0 {
		b.WriteString("  classDef classNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px;\n")
		fmt.Fprintf(&b, "  class %s classNode;\n", strings.Join(classes, ","))
	}
	if len(modules) > 0 {
		b.WriteString("  classDef moduleNode fill:#fffbe6,stroke:#8a6d00,stroke-width:1px;\n")
		fmt.Fprintf(&b, "  class %s moduleNode;\n", strings.Join(modules, ","))
	}
	return b.String(), nil
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
