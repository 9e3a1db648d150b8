package app

import (
	"context"
	"fmt"
	"time"

	"rbgraph/internal/core/errors"
	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}

func (s *analysisService) Unwrap() *App {
	return s.app
}

func (s *analysisService) RunAnalysis(ctx context.Context) (ports.AnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return ports.AnalysisReport{}, err
	}
	if s.app == nil {
		return ports.AnalysisReport{}, fmt.Errorf("app is required")
	}
	report, err := s.app.Analyze(ctx)
	if err != nil {
		return ports.AnalysisReport{}, errors.AddContext(err, errors.CtxOperation, "analyze")
	}
	return report, nil
}

func (s *analysisService) LatestReport(ctx context.Context) (ports.AnalysisReport, bool) {
	if ctx.Err() != nil || s.app == nil {
		return ports.AnalysisReport{}, false
	}
	return s.app.LatestReport()
}

func (s *analysisService) HistoryTrend(ctx context.Context, req ports.HistoryTrendRequest) (history.TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return history.TrendReport{}, err
	}
	if s.app == nil {
		return history.TrendReport{}, fmt.Errorf("app is required")
	}
	if req.Window <= 0 {
		req.Window = 24 * time.Hour
	}
	report, err := s.app.HistoryTrend(req)
	if err != nil {
		return history.TrendReport{}, errors.AddContext(err, errors.CtxOperation, "history_trend")
	}
	return report, nil
}

// Watch subscribes handler to every re-analysis and starts the file
// watcher. It returns once the watcher is running.
func (s *analysisService) Watch(ctx context.Context, handler func(ports.AnalysisReport)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler != nil {
		s.app.SetUpdateHandler(handler)
	}
	return s.app.StartWatcher(ctx)
}
