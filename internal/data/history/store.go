package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rbgraph/internal/engine/analysis"
)

const (
	driverName        = "sqlite"
	maxAttempts       = 5
	defaultProjectKey = "default"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveSnapshot inserts snapshot under projectKey and returns its run id,
// generating one when the snapshot has none.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = normalizeProjectKey(projectKey)
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	err := s.withRetry("save snapshot", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.Exec(`
INSERT INTO snapshots (
  run_id, project_key, schema_version, ts_utc, duration_ms, file_count, failed_count,
  class_count, module_count, reference_count, dangling_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snapshot.RunID,
			projectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.Duration.Milliseconds(),
			snapshot.FileCount,
			snapshot.FailedCount,
			snapshot.ClassCount,
			snapshot.ModuleCount,
			snapshot.ReferenceCount,
			snapshot.DanglingCount,
		); err != nil {
			return err
		}

		for _, kind := range analysis.AllReferenceKinds() {
			count := snapshot.KindCounts[kind]
			if count == 0 {
				continue
			}
			if _, err := tx.Exec(`INSERT INTO snapshot_kind_counts (run_id, kind, count) VALUES (?, ?, ?)`,
				snapshot.RunID, kind.String(), count); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return snapshot.RunID, nil
}

// LoadSnapshots returns snapshots for projectKey at or after since, oldest
// first. A zero since loads everything.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, project_key, schema_version, ts_utc, duration_ms, file_count, failed_count,
  class_count, module_count, reference_count, dangling_count
FROM snapshots
WHERE project_key = ?`
	args := []any{normalizeProjectKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, run_id ASC"

	var snapshots []Snapshot
	err := s.withRetry("load snapshots", func() error {
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		snapshots = snapshots[:0]
		for rows.Next() {
			var (
				tsRaw      string
				durationMS int64
				snapshot   Snapshot
			)
			if err := rows.Scan(
				&snapshot.RunID,
				&snapshot.ProjectKey,
				&snapshot.SchemaVersion,
				&tsRaw,
				&durationMS,
				&snapshot.FileCount,
				&snapshot.FailedCount,
				&snapshot.ClassCount,
				&snapshot.ModuleCount,
				&snapshot.ReferenceCount,
				&snapshot.DanglingCount,
			); err != nil {
				return fmt.Errorf("scan snapshot row: %w", err)
			}
			ts, err := time.Parse(time.RFC3339Nano, tsRaw)
			if err != nil {
				return fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
			}
			snapshot.Timestamp = ts.UTC()
			snapshot.Duration = time.Duration(durationMS) * time.Millisecond
			snapshots = append(snapshots, snapshot)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for i := range snapshots {
		counts, err := s.loadKindCounts(snapshots[i].RunID)
		if err != nil {
			return nil, err
		}
		snapshots[i].KindCounts = counts
	}
	return snapshots, nil
}

func (s *Store) loadKindCounts(runID string) (map[analysis.ReferenceKind]int, error) {
	counts := make(map[analysis.ReferenceKind]int)
	err := s.withRetry("load kind counts", func() error {
		rows, err := s.db.Query(`SELECT kind, count FROM snapshot_kind_counts WHERE run_id = ?`, runID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				tag   string
				count int
			)
			if err := rows.Scan(&tag, &count); err != nil {
				return fmt.Errorf("scan kind count row: %w", err)
			}
			if kind, ok := analysis.ParseReferenceKind(tag); ok {
				counts[kind] = count
			}
		}
		return rows.Err()
	})
	return counts, err
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultProjectKey
	}
	return key
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
