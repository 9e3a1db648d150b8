package output

import (
	"fmt"

	"rbgraph/internal/engine/analysis"
)

type Format string

const (
	FormatDOT      Format = "dot"
	FormatMermaid  Format = "mermaid"
	FormatPlantUML Format = "plantuml"
	FormatTSV      Format = "tsv"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatDOT, FormatMermaid, FormatPlantUML, FormatTSV, FormatYAML}
}

// Render produces one artifact for res.
func Render(format Format, res *analysis.Result) (string, error) {
	switch format {
	case FormatDOT:
		return NewDOTGenerator(Project(res)).Generate()
	case FormatMermaid:
		return NewMermaidGenerator(Project(res)).Generate()
	case FormatPlantUML:
		return NewPlantUMLGenerator(Project(res)).Generate()
	case FormatTSV:
		return NewTSVGenerator(res).Generate()
	case FormatYAML:
		return NewYAMLGenerator(res).Generate()
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}
