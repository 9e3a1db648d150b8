package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Components["context"] = err.Error()
		return status
	}

	if report, ok := s.app.LatestReport(); ok {
		status.Components["analysis"] = fmt.Sprintf("ok (%d files, %d namespaces, %d references)",
			len(report.Files), report.NamespaceCount(), report.ReferenceCount())
	} else {
		status.Components["analysis"] = "pending"
	}

	if s.app.codeParser != nil {
		status.Components["parser"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	}

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	if s.app.exporter != nil {
		status.Components["neo4j"] = "ok"
	} else if s.app.Config.Neo4j.Enabled {
		status.Status = "degraded"
		status.Components["neo4j"] = "missing but enabled in config"
	}

	return status
}
