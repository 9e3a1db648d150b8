package cli

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	active := &m.namespaceList
	if m.mode == panelReferences {
		active = &m.referenceList
	}

	// While a filter is being typed every key belongs to the list.
	if active.FilterState() == list.Filtering {
		var cmd tea.Cmd
		*active, cmd = active.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelNamespaces {
			m.mode = panelReferences
		} else {
			m.mode = panelNamespaces
		}
		return m, nil
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	}

	var cmd tea.Cmd
	*active, cmd = active.Update(msg)
	return m, cmd
}
