package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the project root when --config is not given.
const DefaultFile = "rbgraph.toml"

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Scan          Scan          `toml:"scan"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Neo4j         Neo4j         `toml:"neo4j"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
	DatabaseDir string `toml:"database_dir"`
}

type Scan struct {
	Roots            []string `toml:"roots"`
	Extensions       []string `toml:"extensions"`
	TestFileSuffixes []string `toml:"test_file_suffixes"`
	IncludeTests     bool     `toml:"include_tests"`
	Workers          int      `toml:"workers"`
}

// Exclude holds gobwas/glob patterns matched against base names and
// root-relative slash paths.
type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce             time.Duration `toml:"debounce"`
	MaxRescansPerSecond  float64       `toml:"max_rescans_per_second"`
	ReloadConfigOnChange bool          `toml:"reload_config_on_change"`
}

type Output struct {
	DOT      string      `toml:"dot"`
	Mermaid  string      `toml:"mermaid"`
	PlantUML string      `toml:"plantuml"`
	TSV      string      `toml:"tsv"`
	YAML     string      `toml:"yaml"`
	Paths    OutputPaths `toml:"paths"`
}

type OutputPaths struct {
	Root string `toml:"root"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Project     string        `toml:"project"`
}

type Neo4j struct {
	Enabled     bool   `toml:"enabled"`
	URI         string `toml:"uri"`
	User        string `toml:"user"`
	Password    string `toml:"password"`
	PasswordEnv string `toml:"password_env"`
	Database    string `toml:"database"`
	Clean       bool   `toml:"clean"`
	BatchSize   int    `toml:"batch_size"`
}

// ResolvedPassword prefers the configured environment variable.
func (n Neo4j) ResolvedPassword() string {
	if env := strings.TrimSpace(n.PasswordEnv); env != "" {
		if v, ok := os.LookupEnv(env); ok {
			return v
		}
	}
	return n.Password
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// Load reads a TOML file, applies env overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	return finalize(&cfg)
}

// Default is the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func finalize(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = ".rbgraph/state"
	}
	if strings.TrimSpace(cfg.Paths.DatabaseDir) == "" {
		cfg.Paths.DatabaseDir = ".rbgraph"
	}

	if len(cfg.Scan.Roots) == 0 {
		cfg.Scan.Roots = []string{"app", "lib"}
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".rb"}
	}
	if cfg.Scan.TestFileSuffixes == nil {
		cfg.Scan.TestFileSuffixes = []string{"_spec.rb", "_test.rb"}
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "vendor", "tmp", "log"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRescansPerSecond == 0 {
		cfg.Watch.MaxRescansPerSecond = 1
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Neo4j.URI) == "" {
		cfg.Neo4j.URI = "bolt://localhost:7687"
	}
	if strings.TrimSpace(cfg.Neo4j.User) == "" {
		cfg.Neo4j.User = "neo4j"
	}
	if cfg.Neo4j.BatchSize <= 0 {
		cfg.Neo4j.BatchSize = 500
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "rbgraph"
	}
}
