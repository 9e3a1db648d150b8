package output

import (
	"fmt"
	"strings"

	"rbgraph/internal/engine/analysis"
)

type PlantUMLGenerator struct {
	graph *Graph
}

func NewPlantUMLGenerator(g *Graph) *PlantUMLGenerator {
	return &PlantUMLGenerator{graph: g}
}

// Generate renders a class diagram: subclass_of uses the inheritance arrow,
// nested_in composition, includes a realization and associations plain
// labelled links.
func (p *PlantUMLGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("hide empty members\n")
	b.WriteString("skinparam classAttributeIconSize 0\n\n")

	aliases := makeIDs(p.graph.Nodes)
	for _, node := range p.graph.Nodes {
		stereotype := ""
		if node.Kind == analysis.KindModule {
			stereotype = " <<module>>"
		}
		fmt.Fprintf(&b, "class \"%s\" as %s%s\n", escapePlantUML(node.ID), aliases[node.ID], stereotype)
	}

	if len(p.graph.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, edge := range p.graph.Edges {
		from, to := aliases[edge.From], aliases[edge.To]
		switch edge.Kind {
		case analysis.SubclassOf:
			fmt.Fprintf(&b, "%s <|-- %s\n", to, from)
		case analysis.NestedIn:
			fmt.Fprintf(&b, "%s *-- %s : nested_in\n", to, from)
		case analysis.Includes:
			fmt.Fprintf(&b, "%s ..|> %s : includes\n", from, to)
		case analysis.HasMany:
			fmt.Fprintf(&b, "%s \"1\" --> \"*\" %s : has_many\n", from, to)
		default:
			fmt.Fprintf(&b, "%s --> %s : %s\n", from, to, edge.Kind)
		}
	}

	b.WriteString("@enduml\n")
	return b.String(), nil
}

func escapePlantUML(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
