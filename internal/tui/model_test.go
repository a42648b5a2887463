package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
	"fraudscope/internal/viewmodel"
)

type stubSource struct {
	dashboardErr error
	detailsErr   error
	compareErr   error
}

func (s *stubSource) GetDashboardData(_ context.Context) (api.DashboardDataResponse, error) {
	if s.dashboardErr != nil {
		return api.DashboardDataResponse{}, s.dashboardErr
	}
	return api.DashboardDataResponse{Success: true}, nil
}

func (s *stubSource) GetProviderDetails(_ context.Context, provider string) (api.ProviderDetailsResponse, error) {
	if s.detailsErr != nil {
		return api.ProviderDetailsResponse{}, s.detailsErr
	}
	return api.ProviderDetailsResponse{Success: true, Provider: model.ProviderDetails{Provider: provider}}, nil
}

func (s *stubSource) CompareExplanations(_ context.Context, _ string) (api.ComparedExplanations, error) {
	if s.compareErr != nil {
		return api.ComparedExplanations{}, s.compareErr
	}
	return api.ComparedExplanations{}, nil
}

func testPredictions(n int) []model.Prediction {
	predictions := make([]model.Prediction, 0, n)
	for i := 0; i < n; i++ {
		predictions = append(predictions, model.Prediction{
			Provider:           fmt.Sprintf("PRV%03d", i),
			Prediccion:         i % 2,
			ProbabilidadFraude: float64(i%2)*0.5 + 0.3,
		})
	}
	return predictions
}

func testModel(n int) Model {
	return newModel(Config{
		Source:      &stubSource{},
		Predictions: testPredictions(n),
		Width:       100,
		Height:      40,
	})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func TestPaginationKeys(t *testing.T) {
	m := testModel(25) // 3 pages

	assert.Equal(t, 1, m.page)
	m = update(t, m, keyMsg("l"))
	assert.Equal(t, 2, m.page)
	m = update(t, m, keyMsg("l"))
	assert.Equal(t, 3, m.page)

	// Clamped at the last page.
	m = update(t, m, keyMsg("l"))
	assert.Equal(t, 3, m.page)

	m = update(t, m, keyMsg("h"))
	m = update(t, m, keyMsg("h"))
	m = update(t, m, keyMsg("h"))
	assert.Equal(t, 1, m.page)
}

func TestCursorBoundedToPage(t *testing.T) {
	m := testModel(12) // second page has 2 rows

	m = update(t, m, keyMsg("k"))
	assert.Equal(t, 0, m.cursor, "cursor stays at top")

	for i := 0; i < 15; i++ {
		m = update(t, m, keyMsg("j"))
	}
	assert.Equal(t, viewmodel.PageSize-1, m.cursor, "cursor stops at last row")

	m = update(t, m, keyMsg("l"))
	assert.Equal(t, 0, m.cursor, "page change resets cursor")
	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("j"))
	assert.Equal(t, 1, m.cursor, "short page bounds cursor")
}

func TestSearchFiltersAndClampsPage(t *testing.T) {
	m := testModel(25)
	m.page = 3

	m = update(t, m, keyMsg("/"))
	assert.True(t, m.searching)

	m = update(t, m, keyMsg("P"))
	m = update(t, m, keyMsg("R"))
	m = update(t, m, keyMsg("V"))
	m = update(t, m, keyMsg("0"))
	m = update(t, m, keyMsg("0"))
	m = update(t, m, keyMsg("1"))
	m = update(t, m, keyMsg("enter"))

	assert.False(t, m.searching)
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "PRV001", m.filtered[0].Provider)
	assert.Equal(t, 1, m.page, "page clamps into the filtered range")

	// Esc inside search clears the filter.
	m = update(t, m, keyMsg("/"))
	m = update(t, m, keyMsg("esc"))
	assert.Len(t, m.filtered, 25)
}

func TestToggleDashboardAndCycles(t *testing.T) {
	m := testModel(5)

	m = update(t, m, keyMsg("tab"))
	assert.Equal(t, StateDashboard, m.state)

	assert.Equal(t, viewmodel.DefaultTopN, m.topN())
	m = update(t, m, keyMsg("t"))
	assert.Equal(t, 10, m.topN())

	assert.Equal(t, viewmodel.SortByReimbursed, m.sortKey)
	m = update(t, m, keyMsg("s"))
	assert.Equal(t, viewmodel.SortByClaims, m.sortKey)
	m = update(t, m, keyMsg("s"))
	assert.Equal(t, viewmodel.SortByBeneficiaries, m.sortKey)
	m = update(t, m, keyMsg("s"))
	assert.Equal(t, viewmodel.SortByReimbursed, m.sortKey)

	m = update(t, m, keyMsg("tab"))
	assert.Equal(t, StateResults, m.state)
}

func TestDetailPanelsFailIndependently(t *testing.T) {
	m := testModel(5)

	updated, cmd := m.openDetail("PRV001")
	m = updated
	require.NotNil(t, cmd)
	assert.Equal(t, StateDetail, m.state)
	assert.True(t, m.detail.detailsLoading)
	assert.True(t, m.detail.compareLoading)

	m = update(t, m, detailLoadedMsg{
		provider: "PRV001",
		details:  model.ProviderDetails{Provider: "PRV001", ClaimCount: 42},
	})
	assert.False(t, m.detail.detailsLoading)
	assert.Equal(t, 42, m.detail.details.ClaimCount)
	assert.True(t, m.detail.compareLoading, "compare fetch still pending")

	m = update(t, m, compareLoadedMsg{
		provider: "PRV001",
		err:      errors.New("explanations unavailable"),
	})
	assert.False(t, m.detail.compareLoading)
	require.Error(t, m.detail.compareErr)
	assert.NoError(t, m.detail.detailsErr, "details survive a compare failure")
}

func TestStaleDetailMessagesIgnored(t *testing.T) {
	m := testModel(5)

	updated, _ := m.openDetail("PRV002")
	m = updated

	m = update(t, m, detailLoadedMsg{
		provider: "PRV001", // stale fetch from a previous selection
		details:  model.ProviderDetails{Provider: "PRV001"},
	})
	assert.True(t, m.detail.detailsLoading)
	assert.Empty(t, m.detail.details.Provider)
}

func TestEscClosesDetailAndCancelsFetches(t *testing.T) {
	m := testModel(5)

	updated, _ := m.openDetail("PRV001")
	m = updated
	ctxCanceled := false
	cancel := m.detail.cancel
	m.detail.cancel = func() {
		ctxCanceled = true
		cancel()
	}

	m = update(t, m, keyMsg("esc"))
	assert.Equal(t, StateResults, m.state)
	assert.True(t, ctxCanceled)
	assert.Empty(t, m.detail.provider)
}

func TestHelpTogglesAndRestoresState(t *testing.T) {
	m := testModel(5)
	m = update(t, m, keyMsg("tab"))
	require.Equal(t, StateDashboard, m.state)

	m = update(t, m, keyMsg("?"))
	assert.Equal(t, StateHelp, m.state)
	m = update(t, m, keyMsg("?"))
	assert.Equal(t, StateDashboard, m.state)
}

func TestDashboardLoadError(t *testing.T) {
	m := testModel(5)

	m = update(t, m, dashboardLoadedMsg{err: errors.New("HTTP error! status: 500")})
	assert.Error(t, m.dashboardErr)
	assert.False(t, m.dashboardLoading)

	m = update(t, m, dashboardLoadedMsg{rows: []model.DashboardRow{{}}})
	assert.NoError(t, m.dashboardErr)
	assert.Len(t, m.dashboard, 1)
}

func TestQuitKeys(t *testing.T) {
	m := testModel(5)

	updated, cmd := m.Update(keyMsg("q"))
	quit, ok := updated.(Model)
	require.True(t, ok)
	assert.True(t, quit.quitting)
	require.NotNil(t, cmd)
}
