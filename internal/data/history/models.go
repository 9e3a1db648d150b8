package history

import (
	"time"

	"rbgraph/internal/engine/analysis"
)

const SchemaVersion = 1

// Snapshot is the persisted summary of one analysis run.
type Snapshot struct {
	RunID          string
	ProjectKey     string
	SchemaVersion  int
	Timestamp      time.Time
	Duration       time.Duration
	FileCount      int
	FailedCount    int
	ClassCount     int
	ModuleCount    int
	ReferenceCount int
	DanglingCount  int
	KindCounts     map[analysis.ReferenceKind]int
}

// NamespaceCount is classes plus modules.
func (s Snapshot) NamespaceCount() int {
	return s.ClassCount + s.ModuleCount
}

// NewSnapshot summarizes res. A reference is dangling when its target was
// never defined as a namespace.
func NewSnapshot(res *analysis.Result, fileCount, failedCount int, duration time.Duration) Snapshot {
	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Duration:      duration,
		FileCount:     fileCount,
		FailedCount:   failedCount,
		KindCounts:    make(map[analysis.ReferenceKind]int),
	}
	if res == nil {
		return snap
	}

	defined := make(map[string]bool, len(res.Namespaces))
	for _, ns := range res.Namespaces {
		defined[ns.Identifier] = true
		if ns.Kind == analysis.KindModule {
			snap.ModuleCount++
		} else {
			snap.ClassCount++
		}
	}
	for _, ref := range res.References {
		snap.ReferenceCount++
		snap.KindCounts[ref.Kind]++
		if !defined[ref.To] {
			snap.DanglingCount++
		}
	}
	return snap
}
