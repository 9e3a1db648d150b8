package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies RBGRAPH_[SECTION]_[KEY] environment overrides.
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "RBGRAPH_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "RBGRAPH_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "RBGRAPH_PATHS_DATABASE_DIR")

	setEnvInt(&cfg.Scan.Workers, "RBGRAPH_SCAN_WORKERS")
	setEnvBool(&cfg.Scan.IncludeTests, "RBGRAPH_SCAN_INCLUDE_TESTS")

	setEnvDuration(&cfg.Watch.Debounce, "RBGRAPH_WATCH_DEBOUNCE")

	setEnvBool(&cfg.DB.Enabled, "RBGRAPH_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "RBGRAPH_DB_PATH")

	setEnvBool(&cfg.Neo4j.Enabled, "RBGRAPH_NEO4J_ENABLED")
	setEnvString(&cfg.Neo4j.URI, "RBGRAPH_NEO4J_URI")
	setEnvString(&cfg.Neo4j.User, "RBGRAPH_NEO4J_USER")

	setEnvString(&cfg.Observability.MetricsAddr, "RBGRAPH_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "RBGRAPH_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", i)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", b)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", d)
			*target = d
		}
	}
}
