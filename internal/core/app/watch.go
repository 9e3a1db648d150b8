package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"rbgraph/internal/core/watcher"
)

// StartWatcher re-runs Analyze whenever a watched Ruby file changes. Each
// run starts from a fresh Result, so removed files simply drop out.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}

	suffixes := a.codeParser.SupportedTestFileSuffixes()
	if a.IncludeTests {
		suffixes = nil
	}
	w.SetLanguageFilters(a.codeParser.SupportedExtensions(), suffixes)
	w.SetMaxRescansPerSecond(a.Config.Watch.MaxRescansPerSecond)

	roots := make([]string, 0, len(a.Config.Scan.Roots))
	for _, root := range a.Config.Scan.Roots {
		path := filepath.Join(a.Paths.ProjectRoot, filepath.FromSlash(root))
		if !dirExists(path) {
			slog.Debug("not watching missing scan root", "path", path)
			continue
		}
		roots = append(roots, path)
	}
	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return err
	}
	a.activeWatcher = w
	slog.Info("watching for changes", "roots", len(roots), "debounce", a.Config.Watch.Debounce)
	return nil
}

func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("detected changes", "count", len(paths))
	if _, err := a.Analyze(ctx); err != nil {
		slog.Error("re-analysis failed", "error", err)
	}
}
