package app

import (
	"context"
	"log/slog"

	"rbgraph/internal/core/config"
)

// ApplyConfig swaps in a reloaded configuration and re-runs the analysis.
// The project root is kept; watcher roots and exclusions only change on
// restart.
func (a *App) ApplyConfig(ctx context.Context, cfg *config.Config) error {
	paths, err := config.ResolvePaths(cfg, a.Paths.ProjectRoot, a.Paths.ProjectRoot)
	if err != nil {
		return err
	}

	a.runMu.Lock()
	a.Config = cfg
	a.Paths = paths
	a.IncludeTests = a.IncludeTests || cfg.Scan.IncludeTests
	a.runMu.Unlock()

	slog.Info("applied reloaded config", "outputs", len(a.outputTargets()))
	_, err = a.Analyze(ctx)
	return err
}
