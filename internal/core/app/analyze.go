package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rbgraph/internal/core/errors"
	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/shared/observability"
)

// Analyze runs discovery, parsing and the namespace walk from a fresh
// Result, then publishes the outcome to outputs, history and Neo4j.
// Storage failures are logged and counted; only discovery and
// cancellation errors fail the run.
func (a *App) Analyze(ctx context.Context) (ports.AnalysisReport, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	ctx, span := observability.Tracer.Start(ctx, "app.Analyze")
	defer span.End()

	start := time.Now()

	files, err := a.DiscoverFiles()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discover files")
		return ports.AnalysisReport{}, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "discover source files"), errors.CtxPath, a.Paths.ProjectRoot)
	}
	observability.AnalysisDuration.WithLabelValues("discover").Observe(time.Since(start).Seconds())

	parseStart := time.Now()
	batch, err := a.codeParser.ParseAll(ctx, files, a.Config.Scan.Workers, a.readFunc())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		return ports.AnalysisReport{}, err
	}
	observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(parseStart).Seconds())
	observability.FilesParsedTotal.Add(float64(len(batch.Files)))
	observability.FilesFailedTotal.Add(float64(len(batch.Failed)))

	walkStart := time.Now()
	trees := make([]analysis.Tree, 0, len(batch.Files))
	for _, f := range batch.Files {
		trees = append(trees, f.Tree())
	}
	res := analysis.Analyze(trees)
	observability.AnalysisDuration.WithLabelValues("walk").Observe(time.Since(walkStart).Seconds())
	recordGraphMetrics(res)

	report := ports.AnalysisReport{
		Result:   res,
		Files:    files,
		Failed:   batch.Failed,
		Duration: time.Since(start),
	}

	written, err := a.GenerateOutputs(res)
	if err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	report.Outputs = written

	if a.history != nil {
		report.SnapshotID = a.saveSnapshot(res, len(files), len(batch.Failed), report.Duration)
	}

	if a.exporter != nil {
		exportStart := time.Now()
		if err := a.exporter.Export(ctx, res, a.Config.Neo4j.Clean); err != nil {
			observability.ExportErrorsTotal.WithLabelValues("neo4j").Inc()
			slog.Error("failed to export graph", "target", "neo4j", "error", err)
		}
		observability.AnalysisDuration.WithLabelValues("export").Observe(time.Since(exportStart).Seconds())
	}

	report.FinishedAt = time.Now().UTC()
	span.SetAttributes(
		attribute.Int("rbgraph.files", len(files)),
		attribute.Int("rbgraph.files_failed", len(batch.Failed)),
		attribute.Int("rbgraph.namespaces", len(res.Namespaces)),
		attribute.Int("rbgraph.references", len(res.References)),
	)
	observability.AnalysisDuration.WithLabelValues("total").Observe(report.Duration.Seconds())

	slog.Info("analysis complete",
		"files", len(files),
		"failed", len(batch.Failed),
		"namespaces", len(res.Namespaces),
		"references", len(res.References),
		"duration", report.Duration,
	)

	a.setLatest(report)
	a.emitUpdate(report)
	return report, nil
}

func (a *App) readFunc() func(string) ([]byte, error) {
	if a.readFile != nil {
		return a.readFile
	}
	return os.ReadFile
}

func (a *App) saveSnapshot(res *analysis.Result, fileCount, failedCount int, duration time.Duration) string {
	snap := history.NewSnapshot(res, fileCount, failedCount, duration)
	runID, err := a.history.SaveSnapshot(a.projectKey(), snap)
	if err != nil {
		observability.ExportErrorsTotal.WithLabelValues("history").Inc()
		slog.Error("failed to save history snapshot", "error", err)
		return ""
	}
	slog.Debug("saved history snapshot", "run_id", runID)
	return runID
}

func (a *App) projectKey() string {
	if a.Config.DB.Project != "" {
		return a.Config.DB.Project
	}
	return a.Paths.ProjectRoot
}

func recordGraphMetrics(res *analysis.Result) {
	observability.GraphNamespaces.Set(float64(len(res.Namespaces)))
	counts := res.CountByKind()
	for _, kind := range analysis.AllReferenceKinds() {
		observability.GraphReferences.WithLabelValues(kind.String()).Set(float64(counts[kind]))
	}
}

// HistoryTrend loads snapshots since req.Since and builds a trend report.
func (a *App) HistoryTrend(req ports.HistoryTrendRequest) (history.TrendReport, error) {
	if a.history == nil {
		return history.TrendReport{}, errors.New(errors.CodeNotSupported, "history store is disabled; set db.enabled = true")
	}
	key := req.ProjectKey
	if key == "" {
		key = a.projectKey()
	}
	snapshots, err := a.history.LoadSnapshots(key, req.Since)
	if err != nil {
		return history.TrendReport{}, fmt.Errorf("load snapshots: %w", err)
	}
	return history.BuildTrendReport(key, snapshots, req.Window)
}
