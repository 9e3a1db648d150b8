package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
)

func runUI(ctx context.Context, svc ports.AnalysisService, report *history.TrendReport) error {
	m := initialModel(report)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := svc.Watch(ctx, func(r ports.AnalysisReport) {
		p.Send(updateMsg{report: r})
	}); err != nil {
		return err
	}

	go func() {
		if latest, ok := svc.LatestReport(ctx); ok {
			p.Send(updateMsg{report: latest})
		}
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
