package history

import (
	"fmt"
	"math"
	"time"
)

type TrendPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id"`
	FileCount       int       `json:"file_count"`
	NamespaceCount  int       `json:"namespace_count"`
	ReferenceCount  int       `json:"reference_count"`
	DanglingCount   int       `json:"dangling_count"`
	DeltaFiles      int       `json:"delta_files"`
	DeltaNamespaces int       `json:"delta_namespaces"`
	DeltaReferences int       `json:"delta_references"`
	DeltaDangling   int       `json:"delta_dangling"`
	ReferenceGrowth float64   `json:"reference_growth_pct"`
	AvgReferences   float64   `json:"avg_references"`
}

type TrendReport struct {
	ProjectKey string       `json:"project_key"`
	Since      time.Time    `json:"since"`
	Until      time.Time    `json:"until"`
	Window     string       `json:"window"`
	ScanCount  int          `json:"scan_count"`
	Points     []TrendPoint `json:"points"`
}

// BuildTrendReport computes run-over-run deltas and a moving average of
// reference counts over window. Snapshots must be in timestamp order.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available for project %q", projectKey)
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:      current.Timestamp,
			RunID:          current.RunID,
			FileCount:      current.FileCount,
			NamespaceCount: current.NamespaceCount(),
			ReferenceCount: current.ReferenceCount,
			DanglingCount:  current.DanglingCount,
		}
		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaNamespaces = current.NamespaceCount() - prev.NamespaceCount()
			point.DeltaReferences = current.ReferenceCount - prev.ReferenceCount
			point.DeltaDangling = current.DanglingCount - prev.DanglingCount
			if prev.ReferenceCount > 0 {
				point.ReferenceGrowth = round2(float64(point.DeltaReferences) / float64(prev.ReferenceCount) * 100)
			}
		}
		point.AvgReferences = round2(movingAverage(snapshots, i, window))
		points = append(points, point)
	}

	return TrendReport{
		ProjectKey: projectKey,
		Since:      snapshots[0].Timestamp,
		Until:      snapshots[len(snapshots)-1].Timestamp,
		Window:     window.String(),
		ScanCount:  len(points),
		Points:     points,
	}, nil
}

func movingAverage(snapshots []Snapshot, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(snapshots[index].ReferenceCount)
	}
	cutoff := snapshots[index].Timestamp.Add(-window)
	total, count := 0, 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		total += snapshots[i].ReferenceCount
		count++
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
