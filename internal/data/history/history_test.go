package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rbgraph/internal/engine/analysis"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestNewSnapshot(t *testing.T) {
	res := analysis.NewResult()
	res.AddNamespace(analysis.Namespace{Kind: analysis.KindModule, Identifier: "Blog", LocalName: "Blog", File: "blog.rb", Enclosing: analysis.NoEnclosing})
	res.AddNamespace(analysis.Namespace{Kind: analysis.KindClass, Identifier: "Blog::Post", LocalName: "Post", DeclaredParent: "ApplicationRecord", File: "blog.rb", Enclosing: 0})
	res.AddReference(analysis.Reference{From: "Blog::Post", To: "Blog", Kind: analysis.NestedIn})
	res.AddReference(analysis.Reference{From: "Blog::Post", To: "Comment", Kind: analysis.HasMany})

	snap := NewSnapshot(res, 3, 1, 40*time.Millisecond)

	if snap.ClassCount != 1 || snap.ModuleCount != 1 || snap.NamespaceCount() != 2 {
		t.Fatalf("unexpected namespace counts: %+v", snap)
	}
	if snap.ReferenceCount != 3 {
		t.Fatalf("expected 3 references, got %d", snap.ReferenceCount)
	}
	if snap.DanglingCount != 2 {
		t.Fatalf("expected ApplicationRecord and Comment to be dangling, got %d", snap.DanglingCount)
	}
	if snap.KindCounts[analysis.SubclassOf] != 1 || snap.KindCounts[analysis.HasMany] != 1 {
		t.Fatalf("unexpected kind counts: %v", snap.KindCounts)
	}
	if snap.FileCount != 3 || snap.FailedCount != 1 {
		t.Fatalf("unexpected file counts: %+v", snap)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	first := Snapshot{
		Timestamp:      base,
		FileCount:      4,
		ClassCount:     3,
		ModuleCount:    1,
		ReferenceCount: 5,
		KindCounts:     map[analysis.ReferenceKind]int{analysis.SubclassOf: 3, analysis.Includes: 2},
	}
	second := Snapshot{
		RunID:          "fixed-run-id",
		Timestamp:      base.Add(2 * time.Hour),
		Duration:       1500 * time.Millisecond,
		FileCount:      6,
		FailedCount:    1,
		ClassCount:     5,
		ModuleCount:    2,
		ReferenceCount: 9,
		DanglingCount:  2,
		KindCounts:     map[analysis.ReferenceKind]int{analysis.HasMany: 9},
	}

	firstID, err := store.SaveSnapshot("shop", first)
	if err != nil {
		t.Fatalf("save first snapshot: %v", err)
	}
	if len(firstID) != 36 {
		t.Fatalf("expected generated uuid run id, got %q", firstID)
	}
	secondID, err := store.SaveSnapshot("shop", second)
	if err != nil {
		t.Fatalf("save second snapshot: %v", err)
	}
	if secondID != "fixed-run-id" {
		t.Fatalf("expected caller run id to be kept, got %q", secondID)
	}

	all, err := store.LoadSnapshots("shop", time.Time{})
	if err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(all))
	}
	if all[0].RunID != firstID || all[0].KindCounts[analysis.Includes] != 2 {
		t.Fatalf("unexpected first snapshot %+v", all[0])
	}
	got := all[1]
	if got.Duration != 1500*time.Millisecond || got.DanglingCount != 2 || got.FailedCount != 1 {
		t.Fatalf("unexpected second snapshot %+v", got)
	}
	if got.KindCounts[analysis.HasMany] != 9 || len(got.KindCounts) != 1 {
		t.Fatalf("unexpected kind counts %v", got.KindCounts)
	}

	recent, err := store.LoadSnapshots("shop", base.Add(time.Hour))
	if err != nil {
		t.Fatalf("load since: %v", err)
	}
	if len(recent) != 1 || recent[0].RunID != "fixed-run-id" {
		t.Fatalf("expected only the second snapshot after since filter, got %+v", recent)
	}
}

func TestStore_DuplicateRunIDFails(t *testing.T) {
	store, _ := openTestStore(t)
	snap := Snapshot{RunID: "dup", FileCount: 1}
	if _, err := store.SaveSnapshot("", snap); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveSnapshot("", snap); err == nil {
		t.Fatal("expected primary key violation for duplicate run id")
	}
	rows, err := store.LoadSnapshots("default", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ProjectKey != "default" {
		t.Fatalf("expected one row under default project, got %+v", rows)
	}
}

func TestStore_ProjectIsolation(t *testing.T) {
	store, _ := openTestStore(t)

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	if _, err := store.SaveSnapshot("project-a", Snapshot{Timestamp: base, ClassCount: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveSnapshot("project-b", Snapshot{Timestamp: base, ClassCount: 2}); err != nil {
		t.Fatal(err)
	}

	aRows, err := store.LoadSnapshots("project-a", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(aRows) != 1 || aRows[0].ClassCount != 1 {
		t.Fatalf("unexpected project-a rows: %+v", aRows)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir(), 0)
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path, 0)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	store, path := openTestStore(t)

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildTrendReport(t *testing.T) {
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	snapshots := []Snapshot{
		{Timestamp: base, FileCount: 5, ClassCount: 4, ReferenceCount: 10},
		{Timestamp: base.Add(2 * time.Hour), FileCount: 8, ClassCount: 5, ModuleCount: 1, ReferenceCount: 15, DanglingCount: 2},
		{Timestamp: base.Add(30 * time.Hour), FileCount: 9, ClassCount: 6, ModuleCount: 1, ReferenceCount: 12},
	}

	report, err := BuildTrendReport("shop", snapshots, 24*time.Hour)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.ScanCount != 3 {
		t.Fatalf("expected scan_count=3, got %d", report.ScanCount)
	}
	p1 := report.Points[1]
	if p1.DeltaNamespaces != 2 || p1.DeltaReferences != 5 || p1.DeltaDangling != 2 {
		t.Fatalf("unexpected deltas %+v", p1)
	}
	if p1.ReferenceGrowth != 50 {
		t.Fatalf("expected 50%% reference growth, got %v", p1.ReferenceGrowth)
	}
	if p1.AvgReferences != 12.5 {
		t.Fatalf("expected moving average 12.5, got %v", p1.AvgReferences)
	}
	if report.Points[2].AvgReferences != 12 {
		t.Fatalf("expected window to drop old runs, got %v", report.Points[2].AvgReferences)
	}

	if _, err := BuildTrendReport("shop", nil, time.Hour); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
	if IsCorruptError(nil) {
		t.Fatal("nil is not corrupt")
	}
}
