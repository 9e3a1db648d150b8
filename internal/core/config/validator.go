package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"rbgraph/internal/core/errors"

	"github.com/gobwas/glob"
)

// Validate runs every section check and returns the first failure as a
// VALIDATION_ERROR.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateScan,
		validateExclude,
		validateWatch,
		validateOutput,
		validateDatabase,
		validateNeo4j,
		validateObservability,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, root := range cfg.Scan.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("scan.roots[%d] must not be empty", i)
		}
	}
	for i, ext := range cfg.Scan.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return fmt.Errorf("scan.extensions[%d] must not be empty", i)
		}
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("scan.extensions[%d] %q must not contain path separators", i, ext)
		}
	}
	for i, suffix := range cfg.Scan.TestFileSuffixes {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("scan.test_file_suffixes[%d] must not be empty", i)
		}
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRescansPerSecond < 0 {
		return fmt.Errorf("watch.max_rescans_per_second must not be negative")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	targets := []struct {
		key  string
		path string
	}{
		{"output.dot", cfg.Output.DOT},
		{"output.mermaid", cfg.Output.Mermaid},
		{"output.plantuml", cfg.Output.PlantUML},
		{"output.tsv", cfg.Output.TSV},
		{"output.yaml", cfg.Output.YAML},
	}
	seen := make(map[string]string, len(targets))
	for _, target := range targets {
		path := strings.TrimSpace(target.path)
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if previous, ok := seen[clean]; ok {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", previous, target.key, path)
		}
		seen[clean] = target.key
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}

func validateNeo4j(cfg *Config) error {
	if !cfg.Neo4j.Enabled {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(cfg.Neo4j.URI))
	if err != nil {
		return fmt.Errorf("neo4j.uri: %w", err)
	}
	switch u.Scheme {
	case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
	default:
		return fmt.Errorf("neo4j.uri scheme must be bolt or neo4j, got %q", u.Scheme)
	}
	if strings.TrimSpace(cfg.Neo4j.User) == "" {
		return fmt.Errorf("neo4j.user must not be empty when neo4j.enabled=true")
	}
	if strings.TrimSpace(cfg.Neo4j.Password) != "" && strings.TrimSpace(cfg.Neo4j.PasswordEnv) != "" {
		return fmt.Errorf("neo4j.password cannot be set alongside neo4j.password_env")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	addr := strings.TrimSpace(cfg.Observability.MetricsAddr)
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("observability.metrics_addr %q: %w", addr, err)
	}
	return nil
}
