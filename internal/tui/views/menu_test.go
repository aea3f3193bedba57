package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewMenuModel(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems())

	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 3, len(m.Items()))
}

func TestMenuModelNavigate(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems())

	tests := []struct {
		key  string
		want int
	}{
		{"k", 0}, // stays at the top
		{"j", 1},
		{"j", 2},
		{"j", 2}, // stays at the bottom
		{"k", 1},
	}
	for _, tt := range tests {
		updated, _ := m.Update(key(tt.key))
		m = updated.(MenuModel)
		assert.Equal(t, tt.want, m.Cursor(), "after %s", tt.key)
	}
}

func TestMenuModelSelected(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems())

	selected := m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, ModeMessage, selected.Mode)

	updated, _ := m.Update(key("j"))
	m = updated.(MenuModel)
	selected = m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, ModeURL, selected.Mode)

	updated, _ = m.Update(key("j"))
	m = updated.(MenuModel)
	selected = m.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, ModeHistory, selected.Mode)
}

func TestMenuModelSelectedEmpty(t *testing.T) {
	m := NewMenuModel([]MenuItem{})
	assert.Nil(t, m.Selected())
}

func TestMenuModelView(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems())
	view := m.View()

	assert.Contains(t, view, "scamscan")
	assert.Contains(t, view, "Analyze message")
	assert.Contains(t, view, "Check URL")
	assert.Contains(t, view, "Recent analyses")
	assert.Contains(t, view, "navigate")
}

func TestMenuModelQuit(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems())
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
}
