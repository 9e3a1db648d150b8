package app

import (
	"fmt"
	"strings"

	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/output"
	"rbgraph/internal/shared/observability"
	"rbgraph/internal/shared/util"
)

type outputTarget struct {
	Format output.Format
	Path   string
}

// outputTargets returns the configured artifacts in format order,
// resolved against the output root.
func (a *App) outputTargets() []outputTarget {
	configured := map[output.Format]string{
		output.FormatDOT:      a.Config.Output.DOT,
		output.FormatMermaid:  a.Config.Output.Mermaid,
		output.FormatPlantUML: a.Config.Output.PlantUML,
		output.FormatTSV:      a.Config.Output.TSV,
		output.FormatYAML:     a.Config.Output.YAML,
	}
	var targets []outputTarget
	for _, format := range output.Formats() {
		raw := strings.TrimSpace(configured[format])
		if raw == "" {
			continue
		}
		targets = append(targets, outputTarget{Format: format, Path: a.Paths.OutputPath(raw)})
	}
	return targets
}

// GenerateOutputs renders res into every configured artifact and returns
// the written paths.
func (a *App) GenerateOutputs(res *analysis.Result) ([]string, error) {
	var written []string
	for _, target := range a.outputTargets() {
		content, err := output.Render(target.Format, res)
		if err != nil {
			observability.ExportErrorsTotal.WithLabelValues(string(target.Format)).Inc()
			return written, fmt.Errorf("generate %s output: %w", target.Format, err)
		}
		if err := util.WriteStringWithDirs(target.Path, content, 0o644); err != nil {
			observability.ExportErrorsTotal.WithLabelValues(string(target.Format)).Inc()
			return written, fmt.Errorf("write %s output %q: %w", target.Format, target.Path, err)
		}
		written = append(written, target.Path)
	}
	return written, nil
}
