package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
	"fraudscope/internal/viewmodel"
)

// State represents the current state of the browser.
type State int

const (
	StateResults State = iota
	StateDashboard
	StateDetail
	StateHelp
)

// detailPanel holds the provider drill-down state. The two fetches run
// concurrently and fail independently; one panel erroring does not blank
// the other.
type detailPanel struct {
	provider string

	details        model.ProviderDetails
	detailsLoading bool
	detailsErr     error

	compared       api.ComparedExplanations
	compareLoading bool
	compareErr     error

	cancel context.CancelFunc
}

// Model holds the browser state.
type Model struct {
	source      DataSource
	keymap      KeyMap
	searchInput textinput.Model

	predictions []model.Prediction
	filtered    []model.Prediction
	dashboard   []model.DashboardRow

	detail detailPanel

	page      int
	cursor    int
	sortKey   viewmodel.SortKey
	topNIdx   int
	searching bool

	dashboardErr     error
	dashboardLoading bool

	width    int
	height   int
	state    State
	prev     State
	quitting bool
}

// newModel creates a browser model from the launch config.
func newModel(cfg Config) Model {
	search := textinput.New()
	search.Placeholder = "provider name"
	search.CharLimit = 64
	search.Width = 30

	topNIdx := 0
	for i, n := range viewmodel.TopNChoices {
		if n == viewmodel.DefaultTopN {
			topNIdx = i
		}
	}

	return Model{
		source:      cfg.Source,
		keymap:      DefaultKeyMap(),
		searchInput: search,
		predictions: cfg.Predictions,
		filtered:    cfg.Predictions,
		page:        1,
		sortKey:     viewmodel.SortByReimbursed,
		topNIdx:     topNIdx,
		width:       cfg.Width,
		height:      cfg.Height,
		state:       StateResults,
	}
}

// Init starts the initial dashboard load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.source != nil {
		cmds = append(cmds, m.loadDashboard())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashboardLoadedMsg:
		m.dashboardLoading = false
		m.dashboardErr = msg.err
		if msg.err == nil {
			m.dashboard = msg.rows
		}

	case detailLoadedMsg:
		if msg.provider == m.detail.provider {
			m.detail.detailsLoading = false
			m.detail.detailsErr = msg.err
			if msg.err == nil {
				m.detail.details = msg.details
			}
		}

	case compareLoadedMsg:
		if msg.provider == m.detail.provider {
			m.detail.compareLoading = false
			m.detail.compareErr = msg.err
			if msg.err == nil {
				m.detail.compared = msg.compared
			}
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.closeDetail()
		m.quitting = true
		return m, tea.Quit
	}

	// Search input captures everything except confirm and cancel.
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			m.applyFilter()
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.applyFilter()
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.closeDetail()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		if m.state == StateHelp {
			m.state = m.prev
		} else {
			m.prev = m.state
			m.state = StateHelp
		}

	case key.Matches(msg, m.keymap.Back):
		if m.state == StateDetail {
			m.closeDetail()
			m.state = StateResults
		} else if m.state == StateHelp {
			m.state = m.prev
		}

	case key.Matches(msg, m.keymap.ToggleView):
		m.closeDetail()
		if m.state == StateDashboard {
			m.state = StateResults
		} else {
			m.state = StateDashboard
		}

	case key.Matches(msg, m.keymap.ToggleSearch):
		if m.state == StateResults {
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keymap.CycleSort):
		if m.state == StateDashboard {
			m.sortKey = nextSortKey(m.sortKey)
		}

	case key.Matches(msg, m.keymap.CycleTopN):
		if m.state == StateDashboard {
			m.topNIdx = (m.topNIdx + 1) % len(viewmodel.TopNChoices)
		}

	case key.Matches(msg, m.keymap.Up):
		if m.state == StateResults && m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.state == StateResults && m.cursor < len(m.currentPage())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.PrevPage):
		if m.state == StateResults {
			m.page = viewmodel.ClampPage(m.page-1, viewmodel.TotalPages(len(m.filtered)))
			m.cursor = 0
		}

	case key.Matches(msg, m.keymap.NextPage):
		if m.state == StateResults {
			m.page = viewmodel.ClampPage(m.page+1, viewmodel.TotalPages(len(m.filtered)))
			m.cursor = 0
		}

	case key.Matches(msg, m.keymap.Select):
		if m.state == StateResults {
			if selected := m.selectedPrediction(); selected != nil {
				return m.openDetail(selected.Provider)
			}
		}

	case key.Matches(msg, m.keymap.Refresh):
		if m.source != nil {
			m.dashboardLoading = true
			return m, m.loadDashboard()
		}
	}

	return m, nil
}

// openDetail switches to the detail view and starts both fetches
// concurrently under one cancelable context.
func (m Model) openDetail(provider string) (Model, tea.Cmd) {
	m.closeDetail()

	ctx, cancel := context.WithCancel(context.Background())
	m.detail = detailPanel{
		provider:       provider,
		detailsLoading: true,
		compareLoading: true,
		cancel:         cancel,
	}
	m.state = StateDetail

	return m, tea.Batch(
		m.loadDetails(ctx, provider),
		m.loadCompare(ctx, provider),
	)
}

// closeDetail cancels any in-flight detail fetches.
func (m *Model) closeDetail() {
	if m.detail.cancel != nil {
		m.detail.cancel()
	}
	m.detail = detailPanel{}
}

func (m *Model) applyFilter() {
	m.filtered = viewmodel.FilterPredictions(m.predictions, m.searchInput.Value())
	m.page = viewmodel.ClampPage(m.page, viewmodel.TotalPages(len(m.filtered)))
	m.cursor = 0
}

func (m Model) currentPage() []model.Prediction {
	return viewmodel.Page(m.filtered, m.page)
}

func (m Model) selectedPrediction() *model.Prediction {
	page := m.currentPage()
	if m.cursor < 0 || m.cursor >= len(page) {
		return nil
	}
	return &page[m.cursor]
}

func (m Model) topN() int {
	return viewmodel.TopNChoices[m.topNIdx]
}

func nextSortKey(key viewmodel.SortKey) viewmodel.SortKey {
	switch key {
	case viewmodel.SortByReimbursed:
		return viewmodel.SortByClaims
	case viewmodel.SortByClaims:
		return viewmodel.SortByBeneficiaries
	default:
		return viewmodel.SortByReimbursed
	}
}
