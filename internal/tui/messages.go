package tui

import (
	"fraudscope/internal/api"
	"fraudscope/internal/model"
)

// Data loading messages.
type dashboardLoadedMsg struct {
	err  error
	rows []model.DashboardRow
}

type detailLoadedMsg struct {
	err      error
	provider string
	details  model.ProviderDetails
}

type compareLoadedMsg struct {
	err      error
	provider string
	compared api.ComparedExplanations
}
