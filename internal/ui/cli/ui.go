package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
	"rbgraph/internal/engine/analysis"
	"rbgraph/internal/output"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#CC342D")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	danglingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + " " + i.desc }

type panelMode int

const (
	panelNamespaces panelMode = iota
	panelReferences
)

type model struct {
	namespaceList list.Model
	referenceList list.Model
	mode          panelMode
	trendReport   *history.TrendReport
	showTrend     bool

	lastUpdate     time.Time
	fileCount      int
	failedCount    int
	namespaceCount int
	referenceCount int
	danglingCount  int
}

type updateMsg struct {
	report ports.AnalysisReport
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.namespaceList.SetSize(width, height)
		m.referenceList.SetSize(width, height)
		return m, nil
	case updateMsg:
		return m.applyReport(msg.report), nil
	}

	var cmd tea.Cmd
	if m.mode == panelNamespaces {
		m.namespaceList, cmd = m.namespaceList.Update(msg)
	} else {
		m.referenceList, cmd = m.referenceList.Update(msg)
	}
	return m, cmd
}

func (m model) applyReport(report ports.AnalysisReport) model {
	res := report.Result
	if res == nil {
		res = analysis.NewResult()
	}
	g := output.Project(res)

	m.lastUpdate = time.Now()
	m.fileCount = len(report.Files)
	m.failedCount = len(report.Failed)
	m.namespaceCount = len(g.Nodes)
	m.referenceCount = len(res.References)
	m.danglingCount = len(g.Dangling)

	nsItems := make([]list.Item, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nsItems = append(nsItems, item{
			title: n.ID,
			desc:  fmt.Sprintf("%s in %s", n.Kind, strings.Join(n.Files, ", ")),
		})
	}
	m.namespaceList.SetItems(nsItems)

	refItems := make([]list.Item, 0, len(res.References))
	for _, ref := range res.References {
		desc := ref.Kind.String()
		if !g.Has(ref.To) {
			desc += " (external)"
		}
		refItems = append(refItems, item{title: ref.String(), desc: desc})
	}
	m.referenceList.SetItems(refItems)
	return m
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d namespaces | %d references",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.namespaceCount, m.referenceCount))

	var summary string
	if m.failedCount == 0 && m.danglingCount == 0 {
		summary = successStyle.Render("All references resolved")
	} else {
		summary = fmt.Sprintf("%s | %s",
			failedStyle.Render(fmt.Sprintf("%d skipped files", m.failedCount)),
			danglingStyle.Render(fmt.Sprintf("%d external references", m.danglingCount)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Ruby Dependency Graph"), status, summary)

	body := m.namespaceList.View()
	if m.mode == panelReferences {
		body = m.referenceList.View()
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}

	return docStyle.Render(header + "\n" + renderHelp() + "\n\n" + body)
}

func renderHelp() string {
	return statusStyle.Render("Keys: tab panel | / filter | t trend overlay | q quit")
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (enable --history to capture snapshots).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		"Trend Overlay",
		fmt.Sprintf("  Window: %s | Scans: %d", report.Window, report.ScanCount),
		fmt.Sprintf("  Namespaces: %d (%+d)", last.NamespaceCount, last.DeltaNamespaces),
		fmt.Sprintf("  References: %d (%+d, %.2f%%)", last.ReferenceCount, last.DeltaReferences, last.ReferenceGrowth),
		fmt.Sprintf("  External references: %d (%+d)", last.DanglingCount, last.DeltaDangling),
	}, "\n")
}

func initialModel(trendReport *history.TrendReport) model {
	namespaceList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	namespaceList.Title = "Namespaces"
	namespaceList.SetShowStatusBar(false)
	namespaceList.SetFilteringEnabled(true)

	referenceList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	referenceList.Title = "References"
	referenceList.SetShowStatusBar(false)
	referenceList.SetFilteringEnabled(true)

	return model{
		namespaceList: namespaceList,
		referenceList: referenceList,
		mode:          panelNamespaces,
		trendReport:   trendReport,
		lastUpdate:    time.Now(),
	}
}
