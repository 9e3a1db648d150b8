package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"rbgraph/internal/core/config"
	"rbgraph/internal/core/errors"
	"rbgraph/internal/core/ports"
	"rbgraph/internal/core/watcher"
	"rbgraph/internal/data/graphstore"
	"rbgraph/internal/data/history"
	"rbgraph/internal/engine/parser"
)

// Dependencies lets callers inject adapters. A nil History or Exporter
// disables that stage of the pipeline.
type Dependencies struct {
	CodeParser ports.CodeParser
	History    ports.HistoryStore
	Exporter   ports.GraphExporter
	ReadFile   parser.ReadFunc
}

type App struct {
	Config       *config.Config
	Paths        config.ResolvedPaths
	IncludeTests bool

	codeParser ports.CodeParser
	history    ports.HistoryStore
	exporter   ports.GraphExporter
	readFile   parser.ReadFunc

	// runMu serializes analysis runs; watch flushes and explicit runs may overlap.
	runMu sync.Mutex

	latestMu sync.RWMutex
	latest   ports.AnalysisReport
	hasRun   bool

	updateMu sync.RWMutex
	onUpdate func(ports.AnalysisReport)

	activeWatcher *watcher.Watcher
}

// New wires the default Ruby parser and opens the history store when
// enabled. The Neo4j exporter is connected separately by ConnectGraphStore
// because it needs a context and a reachable server.
func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	deps := Dependencies{
		CodeParser: parser.NewParserWithSpec(parser.LanguageSpec{
			Extensions:       cfg.Scan.Extensions,
			TestFileSuffixes: cfg.Scan.TestFileSuffixes,
		}),
	}
	if cfg.DB.Enabled {
		store, err := history.Open(paths.DBPath, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeUnavailable, "open history store"), errors.CtxPath, paths.DBPath)
		}
		deps.History = store
	}
	return NewWithDependencies(cfg, paths, deps)
}

func NewWithDependencies(cfg *config.Config, paths config.ResolvedPaths, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	if deps.CodeParser == nil {
		return nil, errors.New(errors.CodeValidationError, "code parser dependency is required")
	}
	return &App{
		Config:       cfg,
		Paths:        paths,
		IncludeTests: cfg.Scan.IncludeTests,
		codeParser:   deps.CodeParser,
		history:      deps.History,
		exporter:     deps.Exporter,
		readFile:     deps.ReadFile,
	}, nil
}

// ConnectGraphStore opens the Neo4j exporter when it is enabled in config.
func (a *App) ConnectGraphStore(ctx context.Context) error {
	if !a.Config.Neo4j.Enabled || a.exporter != nil {
		return nil
	}
	loader, err := graphstore.NewLoader(ctx, graphstore.Options{
		URI:       a.Config.Neo4j.URI,
		User:      a.Config.Neo4j.User,
		Password:  a.Config.Neo4j.ResolvedPassword(),
		Database:  a.Config.Neo4j.Database,
		BatchSize: a.Config.Neo4j.BatchSize,
	})
	if err != nil {
		return errors.AddContext(
			errors.Wrap(err, errors.CodeUnavailable, "connect graph store"), errors.CtxTarget, a.Config.Neo4j.URI)
	}
	slog.Info("connected to neo4j", "uri", a.Config.Neo4j.URI)
	a.exporter = loader
	return nil
}

func (a *App) SetUpdateHandler(handler func(ports.AnalysisReport)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(report ports.AnalysisReport) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(report)
	}
}

// LatestReport returns the most recent completed analysis.
func (a *App) LatestReport() (ports.AnalysisReport, bool) {
	a.latestMu.RLock()
	defer a.latestMu.RUnlock()
	return a.latest, a.hasRun
}

func (a *App) setLatest(report ports.AnalysisReport) {
	a.latestMu.Lock()
	a.latest = report
	a.hasRun = true
	a.latestMu.Unlock()
}

// Close releases the watcher and every storage adapter.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close history store: %w", err)
		}
	}
	if a.exporter != nil {
		if err := a.exporter.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close graph store: %w", err)
		}
	}
	return firstErr
}
