package tui

import (
	"context"
	"time"

	"github.com/buemura/scamscan/internal/tui/views"
	"github.com/buemura/scamscan/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
)

// Service is the analysis backend the TUI drives.
type Service interface {
	Analyze(ctx context.Context, message string) types.ScanOutcome
	ResolvePending(ctx context.Context, o types.ScanOutcome) types.ScanOutcome
	History(ctx context.Context) ([]types.ScanOutcome, error)
}

// appState represents which view is currently active.
type appState int

const (
	stateMenu    appState = iota // Mode selection menu
	stateInput                   // Message or URL input
	stateScan                    // Analysis in progress
	stateResults                 // Outcome display
	stateHistory                 // Saved outcomes
)

// Model is the root Bubble Tea model that manages view transitions.
type Model struct {
	state   appState
	svc     Service
	timeout time.Duration
	width   int
	height  int

	// Sub-models for each view.
	menu    views.MenuModel
	input   views.InputModel
	scan    views.ScanModel
	results views.ResultsModel
	history views.HistoryModel
}

// NewModel creates a root model over svc. timeout bounds each analysis and
// resolution; zero means no limit.
func NewModel(svc Service, timeout time.Duration) Model {
	return Model{
		state:   stateMenu,
		svc:     svc,
		timeout: timeout,
		menu:    views.NewMenuModel(views.DefaultMenuItems()),
		input:   views.NewInputModel(views.ModeMessage),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and manages state transitions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m.handleBack()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	switch m.state {
	case stateMenu:
		return m.updateMenu(msg)
	case stateInput:
		return m.updateInput(msg)
	case stateScan:
		return m.updateScan(msg)
	case stateResults:
		return m.updateResults(msg)
	case stateHistory:
		return m.updateHistory(msg)
	}

	return m, nil
}

// View renders the current view.
func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.menu.View()
	case stateInput:
		return m.input.View()
	case stateScan:
		return m.scan.View()
	case stateResults:
		return m.results.View()
	case stateHistory:
		return m.history.View()
	}
	return ""
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateInput, stateResults, stateHistory:
		m.state = stateMenu
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		selected := m.menu.Selected()
		if selected != nil && selected.Mode == views.ModeHistory {
			m.history = views.NewHistoryModel()
			m.state = stateHistory
			return m, views.LoadHistory(m.svc.History, m.timeout)
		}
		if selected != nil {
			m.input = views.NewInputModel(selected.Mode)
			m.state = stateInput
			return m, m.input.Init()
		}
	}

	updated, cmd := m.menu.Update(msg)
	m.menu = updated.(views.MenuModel)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.input.SubmitKey(keyMsg.String()) {
		if value, err := m.input.Validated(); err == nil {
			m.scan = views.NewScanModel(m.svc.Analyze, value, m.timeout)
			m.state = stateScan
			return m, m.scan.Init()
		}
	}

	updated, cmd := m.input.Update(msg)
	m.input = updated.(views.InputModel)
	return m, cmd
}

func (m Model) updateScan(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(views.ScanCompleteMsg); ok {
		m.results = views.NewResultsModel(done.Outcome, m.svc.ResolvePending, m.timeout)
		m.state = stateResults
		return m, nil
	}

	updated, cmd := m.scan.Update(msg)
	m.scan = updated.(views.ScanModel)
	return m, cmd
}

func (m Model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.results.Update(msg)
	m.results = updated.(views.ResultsModel)
	return m, cmd
}

func (m Model) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		if selected := m.history.Selected(); selected != nil {
			m.results = views.NewResultsModel(*selected, m.svc.ResolvePending, m.timeout)
			m.state = stateResults
			return m, nil
		}
	}

	updated, cmd := m.history.Update(msg)
	m.history = updated.(views.HistoryModel)
	return m, cmd
}
