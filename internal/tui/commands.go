package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) loadDashboard() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		resp, err := source.GetDashboardData(context.Background())
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		return dashboardLoadedMsg{rows: resp.Data}
	}
}

func (m Model) loadDetails(ctx context.Context, provider string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		resp, err := source.GetProviderDetails(ctx, provider)
		if err != nil {
			return detailLoadedMsg{provider: provider, err: err}
		}
		return detailLoadedMsg{provider: provider, details: resp.Provider}
	}
}

func (m Model) loadCompare(ctx context.Context, provider string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		compared, err := source.CompareExplanations(ctx, provider)
		if err != nil {
			return compareLoadedMsg{provider: provider, err: err}
		}
		return compareLoadedMsg{provider: provider, compared: compared}
	}
}
