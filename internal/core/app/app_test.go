package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbgraph/internal/core/config"
	"rbgraph/internal/core/errors"
	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/engine/parser"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, root string, mutate func(*config.Config), deps Dependencies) *App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	paths, err := config.ResolvePaths(cfg, root, root)
	require.NoError(t, err)
	if deps.CodeParser == nil {
		deps.CodeParser = parser.NewParser()
	}
	a, err := NewWithDependencies(cfg, paths, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

const blogPost = `module Blog
  class Post < ApplicationRecord
    include Taggable
    belongs_to :author, class_name: "User"
    has_many :comments
  end
end
`

func TestNewWithDependencies_RequiresCodeParser(t *testing.T) {
	_, err := NewWithDependencies(config.Default(), config.ResolvedPaths{}, Dependencies{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewWithDependencies(nil, config.ResolvedPaths{}, Dependencies{CodeParser: parser.NewParser()})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	user := writeFile(t, root, "app/models/user.rb", "class User; end\n")
	writeFile(t, root, "app/models/user_spec.rb", "describe User\n")
	writeFile(t, root, "app/tmp/cache.rb", "class Cache; end\n")
	writeFile(t, root, "app/legacy/old.rb", "class Old; end\n")
	writeFile(t, root, "app/assets/app.js", "")
	tagger := writeFile(t, root, "lib/blog/tagger.rb", "module Tagger; end\n")
	writeFile(t, root, "vendor/gem.rb", "class Gem; end\n")

	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Exclude.Files = []string{"app/legacy/**"}
	}, Dependencies{})

	files, err := a.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{user, tagger}, files)

	a.IncludeTests = true
	files, err = a.DiscoverFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestDiscoverFiles_MissingRootsAreSkipped(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, nil, Dependencies{})

	files, err := a.DiscoverFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFiles_InvalidGlob(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, nil, Dependencies{})
	_, err := a.ScanDirectories([]string{root}, []string{"[oops"}, nil)
	assert.Error(t, err)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/blog/post.rb", blogPost)
	writeFile(t, root, "app/models/user.rb", "class User < ApplicationRecord\nend\n")
	writeFile(t, root, "app/models/broken.rb", "class Broken\n")

	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Output.DOT = "out/graph.dot"
		cfg.Output.TSV = "out/references.tsv"
	}, Dependencies{})

	var updates []ports.AnalysisReport
	a.SetUpdateHandler(func(r ports.AnalysisReport) { updates = append(updates, r) })

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Files, 3)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(root, "app/models/broken.rb"), report.Failed[0].Path)

	assert.Equal(t, []string{
		"Blog::Post → ApplicationRecord [subclass_of]",
		"Blog::Post → Taggable [includes]",
		"Blog::Post → User [belongs_to]",
		"Blog::Post → Comment [has_many]",
		"Blog::Post → Blog [nested_in]",
		"User → ApplicationRecord [subclass_of]",
	}, report.Result.Strings())

	require.Len(t, report.Outputs, 2)
	dot, err := os.ReadFile(filepath.Join(root, "out/graph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")
	tsv, err := os.ReadFile(filepath.Join(root, "out/references.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(tsv), "Blog::Post\tComment\thas_many")

	require.Len(t, updates, 1)
	latest, ok := a.LatestReport()
	require.True(t, ok)
	assert.Equal(t, 3, latest.NamespaceCount())
}

func TestAnalyze_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/blog/post.rb", blogPost)
	a := newTestApp(t, root, nil, Dependencies{})

	first, err := a.Analyze(context.Background())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Result, second.Result)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "class User; end\n")
	a := newTestApp(t, root, nil, Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_UsesInjectedReader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "")
	a := newTestApp(t, root, nil, Dependencies{
		ReadFile: func(string) ([]byte, error) { return []byte("class Injected; end\n"), nil },
	})

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Result.Namespaces, 1)
	assert.Equal(t, "Injected", report.Result.Namespaces[0].Identifier)
}

func TestAnalyze_SavesHistoryAndBuildsTrend(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/blog/post.rb", blogPost)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), time.Second)
	require.NoError(t, err)

	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.DB.Enabled = true
		cfg.DB.Project = "blog"
	}, Dependencies{History: store})

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.SnapshotID)

	trend, err := a.HistoryTrend(ports.HistoryTrendRequest{Window: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, "blog", trend.ProjectKey)
	require.Len(t, trend.Points, 1)
	assert.Equal(t, 2, trend.Points[0].NamespaceCount)
	assert.Equal(t, 5, trend.Points[0].ReferenceCount)
}

func TestHistoryTrend_Disabled(t *testing.T) {
	a := newTestApp(t, t.TempDir(), nil, Dependencies{})
	_, err := a.HistoryTrend(ports.HistoryTrendRequest{})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

type stubExporter struct {
	mu     sync.Mutex
	calls  int
	clean  bool
	err    error
	closed bool
}

func (s *stubExporter) Export(_ context.Context, _ *analysis.Result, clean bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.clean = clean
	return s.err
}

func (s *stubExporter) Close(context.Context) error {
	s.closed = true
	return nil
}

func TestAnalyze_ExportsToGraphStore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "class User; end\n")
	exp := &stubExporter{err: stderrors.New("neo4j down")}

	cfg := config.Default()
	cfg.Neo4j.Clean = true
	paths, err := config.ResolvePaths(cfg, root, root)
	require.NoError(t, err)
	a, err := NewWithDependencies(cfg, paths, Dependencies{CodeParser: parser.NewParser(), Exporter: exp})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background())
	require.NoError(t, err, "export failures are logged, not returned")
	assert.Equal(t, 1, exp.calls)
	assert.True(t, exp.clean)

	require.NoError(t, a.Close(context.Background()))
	assert.True(t, exp.closed)
}

func TestPrintSummary(t *testing.T) {
	res := analysis.NewResult()
	res.AddNamespace(analysis.Namespace{Identifier: "Post", LocalName: "Post", DeclaredParent: "ApplicationRecord", Enclosing: analysis.NoEnclosing})
	report := ports.AnalysisReport{
		Result:     res,
		Files:      []string{"app/models/post.rb", "app/models/broken.rb"},
		Failed:     []parser.FileError{{Path: "app/models/broken.rb", Err: stderrors.New("syntax error at 1:1")}},
		Outputs:    []string{"graph.dot"},
		SnapshotID: "run-1",
	}

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Analyzed 2 files")
	assert.Contains(t, out, "Skipped 1 files")
	assert.Contains(t, out, "subclass_of=1")
	assert.Contains(t, out, "1 references point outside the analyzed code")
	assert.Contains(t, out, "Post → ApplicationRecord [subclass_of]")
	assert.Contains(t, out, "Wrote graph.dot")
	assert.Contains(t, out, "Saved snapshot run-1")
}

func TestHealthCheck(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, func(cfg *config.Config) { cfg.Neo4j.Enabled = true }, Dependencies{})

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "pending", status.Components["analysis"])
	assert.Equal(t, "ok", status.Components["parser"])
	assert.Equal(t, "missing but enabled in config", status.Components["neo4j"])
}

func TestAnalysisService(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/tagger.rb", "module Tagger; end\n")
	a := newTestApp(t, root, nil, Dependencies{})
	svc := a.AnalysisService()

	_, ok := svc.LatestReport(context.Background())
	assert.False(t, ok)

	report, err := svc.RunAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.NamespaceCount())

	latest, ok := svc.LatestReport(context.Background())
	require.True(t, ok)
	assert.Equal(t, report.Files, latest.Files)

	_, err = svc.HistoryTrend(context.Background(), ports.HistoryTrendRequest{})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestWatch_ReanalyzesOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "class User; end\n")
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Watch.Debounce = 50 * time.Millisecond
		cfg.Watch.MaxRescansPerSecond = 0
	}, Dependencies{})

	updates := make(chan ports.AnalysisReport, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.AnalysisService().Watch(ctx, func(r ports.AnalysisReport) { updates <- r }))

	writeFile(t, root, "app/models/post.rb", "class Post < ApplicationRecord; end\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case r := <-updates:
			if r.NamespaceCount() == 2 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for re-analysis")
		}
	}
}

func TestApplyConfig_RewritesOutputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "class User; end\n")
	a := newTestApp(t, root, nil, Dependencies{})

	_, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "graph.mmd"))

	next := config.Default()
	next.Output.Mermaid = "graph.mmd"
	require.NoError(t, a.ApplyConfig(context.Background(), next))
	assert.FileExists(t, filepath.Join(root, "graph.mmd"))
	assert.Equal(t, root, a.Paths.ProjectRoot)
}
