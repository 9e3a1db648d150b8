// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"

	"rbgraph/internal/engine/analysis"
)

// TSVGenerator lists every reference in analysis order, including those
// whose target was never defined.
type TSVGenerator struct {
	result *analysis.Result
}

func NewTSVGenerator(res *analysis.Result) *TSVGenerator {
	return &TSVGenerator{result: res}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder
	buf.WriteString("From\tTo\tKind\tFile\tDefined\n")
	if t.result == nil {
		return buf.String(), nil
	}

	fileByID := make(map[string]string, len(t.result.Namespaces))
	for _, ns := range t.result.Namespaces {
		if _, ok := fileByID[ns.Identifier]; !ok {
			fileByID[ns.Identifier] = ns.File
		}
	}

	for _, ref := range t.result.References {
		_, defined := fileByID[ref.To]
		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%t\n", ref.From, ref.To, ref.Kind, fileByID[ref.From], defined)
	}
	return buf.String(), nil
}
