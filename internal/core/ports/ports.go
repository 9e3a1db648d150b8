// Package ports declares the boundaries between the application service
// and its adapters.
package ports

import (
	"context"
	"time"

	"rbgraph/internal/data/history"
	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/engine/parser"
)

// CodeParser abstracts Ruby parsing and source-file classification.
type CodeParser interface {
	ParseAll(ctx context.Context, paths []string, workers int, read parser.ReadFunc) (parser.BatchResult, error)
	IsSupportedPath(path string) bool
	IsTestFile(path string) bool
	SupportedExtensions() []string
	SupportedTestFileSuffixes() []string
}

// HistoryStore abstracts snapshot persistence for trend reports.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) (string, error)
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
	Close() error
}

// GraphExporter pushes a finished Result to an external graph database.
type GraphExporter interface {
	Export(ctx context.Context, res *analysis.Result, clean bool) error
	Close(ctx context.Context) error
}

// AnalysisReport is the outcome of one full analysis run.
type AnalysisReport struct {
	Result     *analysis.Result
	Files      []string
	Failed     []parser.FileError
	Duration   time.Duration
	Outputs    []string
	SnapshotID string
	FinishedAt time.Time
}

func (r AnalysisReport) NamespaceCount() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.Namespaces)
}

func (r AnalysisReport) ReferenceCount() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.References)
}

// HistoryTrendRequest selects snapshots for a trend report.
type HistoryTrendRequest struct {
	ProjectKey string
	Since      time.Time
	Window     time.Duration
}

// AnalysisService is the driving port used by the CLI and the terminal UI.
type AnalysisService interface {
	RunAnalysis(ctx context.Context) (AnalysisReport, error)
	LatestReport(ctx context.Context) (AnalysisReport, bool)
	HistoryTrend(ctx context.Context, req HistoryTrendRequest) (history.TrendReport, error)
	Watch(ctx context.Context, handler func(AnalysisReport)) error
}
