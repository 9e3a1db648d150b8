// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"rbgraph/internal/engine/analysis"
)

var dotEdgeStyle = map[analysis.ReferenceKind]string{
	analysis.SubclassOf: `color="steelblue", arrowhead=empty, penwidth=1.8`,
	analysis.NestedIn:   `color="grey50", style=dotted, arrowhead=odiamond`,
	analysis.Includes:   `color="darkorange", style=dashed`,
	analysis.BelongsTo:  `color="forestgreen"`,
	analysis.HasMany:    `color="forestgreen", arrowhead=crow`,
}

type DOTGenerator struct {
	graph *Graph
}

func NewDOTGenerator(g *Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph rbgraph {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10, fillcolor=\"white\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n")
	buf.WriteString("  overlap=false;\n\n")

	for _, node := range d.graph.Nodes {
		label := fmt.Sprintf("%s\\n«%s»", escapeDOT(node.ID), node.Kind)
		if node.Kind == analysis.KindModule {
			fmt.Fprintf(&buf, "  %q [label=\"%s\", shape=component, fillcolor=\"lightyellow\"];\n", node.ID, label)
			continue
		}
		fmt.Fprintf(&buf, "  %q [label=\"%s\"];\n", node.ID, label)
	}
	if len(d.graph.Nodes) > 0 {
		buf.WriteString("\n")
	}

	for _, edge := range d.graph.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, %s];\n", edge.From, edge.To, edge.Kind.String(), dotEdgeStyle[edge.Kind])
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
