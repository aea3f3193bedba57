package tui

import (
	"context"
	"testing"

	"github.com/buemura/scamscan/internal/tui/views"
	"github.com/buemura/scamscan/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	analyzed []string
	resolved int
	history  []types.ScanOutcome
}

func (f *fakeService) Analyze(_ context.Context, message string) types.ScanOutcome {
	f.analyzed = append(f.analyzed, message)
	return types.ScanOutcome{Message: message, Verdict: types.VerdictSafe, Confidence: 90, Findings: []types.Finding{}}
}

func (f *fakeService) ResolvePending(_ context.Context, o types.ScanOutcome) types.ScanOutcome {
	f.resolved++
	return o
}

func (f *fakeService) History(_ context.Context) ([]types.ScanOutcome, error) {
	return f.history, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestNewModelStartsAtMenuState(t *testing.T) {
	m := NewModel(&fakeService{}, 0)
	assert.Equal(t, stateMenu, m.state)
	assert.Len(t, m.menu.Items(), 3)
}

func TestModelViewRendersMenuByDefault(t *testing.T) {
	m := NewModel(&fakeService{}, 0)
	view := m.View()
	assert.Contains(t, view, "scamscan")
	assert.Contains(t, view, "What do you want to check?")
}

func TestModelCtrlCQuits(t *testing.T) {
	m := NewModel(&fakeService{}, 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}

func TestModelEscReturnsToMenu(t *testing.T) {
	for _, state := range []appState{stateInput, stateResults, stateHistory} {
		m := NewModel(&fakeService{}, 0)
		m.state = state

		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
		assert.Equal(t, stateMenu, m.state)
	}
}

func TestModelEscDuringScanIsIgnored(t *testing.T) {
	m := NewModel(&fakeService{}, 0)
	m.state = stateScan

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, stateScan, m.state)
}

func TestModelURLFlow(t *testing.T) {
	svc := &fakeService{}
	m := NewModel(svc, 0)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInput, m.state)
	assert.Equal(t, views.ModeURL, m.input.Mode())

	// An empty URL stays on the input view.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateInput, m.state)

	m.input.SetValue("bit.ly/abc")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateScan, m.state)
	require.NotNil(t, cmd)

	m, _ = update(t, m, views.ScanCompleteMsg{Outcome: svc.Analyze(context.Background(), "bit.ly/abc")})
	assert.Equal(t, stateResults, m.state)
	assert.Contains(t, m.View(), "SAFE")
}

func TestModelMessageFlowSubmitsWithCtrlS(t *testing.T) {
	m := NewModel(&fakeService{}, 0)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInput, m.state)
	assert.Equal(t, views.ModeMessage, m.input.Mode())

	m.input.SetValue("URGENT: pay now")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateInput, m.state)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, stateScan, m.state)
}

func TestModelHistoryFlow(t *testing.T) {
	svc := &fakeService{history: []types.ScanOutcome{
		{ID: "b", Message: "claim your prize", Verdict: types.VerdictScam, Confidence: 79, Findings: []types.Finding{}},
		{ID: "a", Message: "see you at lunch", Verdict: types.VerdictSafe, Confidence: 90, Findings: []types.Finding{}},
	}}
	m := NewModel(svc, 0)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateHistory, m.state)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading history")

	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "claim your prize")
	assert.Contains(t, m.View(), "see you at lunch")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateResults, m.state)
	assert.Equal(t, "a", m.results.Outcome().ID)
}
