package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"rbgraph/internal/core/errors"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if want := []string{"app", "lib"}; !reflect.DeepEqual(cfg.Scan.Roots, want) {
		t.Errorf("expected roots %v, got %v", want, cfg.Scan.Roots)
	}
	if want := []string{".rb"}; !reflect.DeepEqual(cfg.Scan.Extensions, want) {
		t.Errorf("expected extensions %v, got %v", want, cfg.Scan.Extensions)
	}
	if want := []string{"_spec.rb", "_test.rb"}; !reflect.DeepEqual(cfg.Scan.TestFileSuffixes, want) {
		t.Errorf("expected test suffixes %v, got %v", want, cfg.Scan.TestFileSuffixes)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.DB.Path != "history.db" {
		t.Errorf("expected default db path, got %q", cfg.DB.Path)
	}
	if cfg.Neo4j.BatchSize != 500 {
		t.Errorf("expected neo4j batch size 500, got %d", cfg.Neo4j.BatchSize)
	}
	if cfg.Observability.ServiceName != "rbgraph" {
		t.Errorf("expected service name rbgraph, got %q", cfg.Observability.ServiceName)
	}
}

func TestParse_ReadsSections(t *testing.T) {
	data := `
version = 1

[scan]
roots = ["app/models"]
workers = 4

[exclude]
dirs = ["vendor", "concerns/**"]
files = ["*_generated.rb"]

[watch]
debounce = "250ms"
max_rescans_per_second = 2.5

[output]
dot = "graph.dot"
yaml = "graph.yaml"

[output.paths]
root = "docs"

[neo4j]
enabled = true
uri = "neo4j://db:7687"
user = "reader"
password_env = "RBGRAPH_TEST_NEO4J_PASSWORD"
`
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(cfg.Scan.Roots, []string{"app/models"}) {
		t.Errorf("unexpected roots %v", cfg.Scan.Roots)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRescansPerSecond != 2.5 {
		t.Errorf("expected 2.5 rescans/s, got %v", cfg.Watch.MaxRescansPerSecond)
	}
	if cfg.Output.Paths.Root != "docs" {
		t.Errorf("expected output root docs, got %q", cfg.Output.Paths.Root)
	}

	t.Setenv("RBGRAPH_TEST_NEO4J_PASSWORD", "s3cret")
	if got := cfg.Neo4j.ResolvedPassword(); got != "s3cret" {
		t.Errorf("expected password from env, got %q", got)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("RBGRAPH_SCAN_WORKERS", "7")
	t.Setenv("RBGRAPH_DB_ENABLED", "true")
	t.Setenv("RBGRAPH_WATCH_DEBOUNCE", "not-a-duration")

	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Scan.Workers != 7 {
		t.Errorf("expected env workers 7, got %d", cfg.Scan.Workers)
	}
	if !cfg.DB.Enabled {
		t.Error("expected db enabled from env")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("invalid duration override should be ignored, got %v", cfg.Watch.Debounce)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"version", "version = 3", "unsupported config version 3"},
		{"empty root", "[scan]\nroots = [\"\"]", "scan.roots[0] must not be empty"},
		{"negative workers", "[scan]\nworkers = -1", "scan.workers must be >= 0"},
		{"bad glob", "[exclude]\nfiles = [\"[abc\"]", "exclude.files[0]"},
		{"output conflict", "[output]\ndot = \"g.out\"\ntsv = \"./g.out\"", "output conflict: output.dot and output.tsv"},
		{"neo4j scheme", "[neo4j]\nenabled = true\nuri = \"http://db\"", "neo4j.uri scheme must be bolt or neo4j"},
		{"neo4j password twice", "[neo4j]\nenabled = true\npassword = \"a\"\npassword_env = \"B\"", "neo4j.password cannot be set alongside"},
		{"metrics addr", "[observability]\nmetrics_addr = \"9090\"", "observability.metrics_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Output.Paths.Root = "docs"
	cfg.DB.Path = "/var/lib/rbgraph/history.db"

	paths, err := ResolvePaths(cfg, "/somewhere/else", root)
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}
	if paths.ProjectRoot != filepath.Clean(root) {
		t.Errorf("expected explicit root, got %q", paths.ProjectRoot)
	}
	if want := filepath.Join(root, ".rbgraph", "state"); paths.StateDir != want {
		t.Errorf("expected state dir %q, got %q", want, paths.StateDir)
	}
	if paths.DBPath != "/var/lib/rbgraph/history.db" {
		t.Errorf("absolute db path should be kept, got %q", paths.DBPath)
	}
	if want := filepath.Join(root, "docs", "graph.dot"); paths.OutputPath("graph.dot") != want {
		t.Errorf("expected %q, got %q", want, paths.OutputPath("graph.dot"))
	}
	if paths.OutputPath("  ") != "" {
		t.Error("empty output target should resolve to empty path")
	}
}

func TestDetectProjectRoot_FindsGemfile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Gemfile"), []byte("source 'https://rubygems.org'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "app", "models")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := DetectProjectRoot([]string{nested})
	if err != nil {
		t.Fatalf("DetectProjectRoot: %v", err)
	}
	if got != filepath.Clean(root) {
		t.Errorf("expected %q, got %q", root, got)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte("[scan]\nworkers = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err := w.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[scan]\nworkers = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Scan.Workers != 3 {
			t.Errorf("expected reloaded workers 3, got %d", cfg.Scan.Workers)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
