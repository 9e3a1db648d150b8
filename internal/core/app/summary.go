package app

import (
	"fmt"
	"io"
	"strings"

	"rbgraph/internal/core/ports"
	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/output"
)

// PrintSummary writes counts, skipped files and every reference string.
func PrintSummary(w io.Writer, report ports.AnalysisReport) {
	res := report.Result
	if res == nil {
		res = analysis.NewResult()
	}

	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Analyzed %d files in %v: %d namespaces, %d references\n",
		len(report.Files), report.Duration, len(res.Namespaces), len(res.References))

	if len(report.Failed) > 0 {
		fmt.Fprintf(w, "Skipped %d files:\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(w, "   %s: %v\n", f.Path, f.Err)
		}
	}

	counts := res.CountByKind()
	parts := make([]string, 0, len(counts))
	for _, kind := range analysis.AllReferenceKinds() {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[kind]))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "By kind: %s\n", strings.Join(parts, " "))
	}

	if dangling := len(output.Project(res).Dangling); dangling > 0 {
		fmt.Fprintf(w, "%d references point outside the analyzed code\n", dangling)
	}

	for _, line := range res.Strings() {
		fmt.Fprintf(w, "   %s\n", line)
	}

	for _, path := range report.Outputs {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
	if report.SnapshotID != "" {
		fmt.Fprintf(w, "Saved snapshot %s\n", report.SnapshotID)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
}
