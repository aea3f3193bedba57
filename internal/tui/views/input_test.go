package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputModelValidated(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		value   string
		want    string
		wantErr bool
	}{
		{"message", ModeMessage, "  URGENT: pay now  ", "URGENT: pay now", false},
		{"empty message", ModeMessage, "   ", "", true},
		{"url", ModeURL, "bit.ly/abc", "bit.ly/abc", false},
		{"empty url", ModeURL, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewInputModel(tt.mode)
			m.SetValue(tt.value)
			got, err := m.Validated()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputModelSubmitKey(t *testing.T) {
	msg := NewInputModel(ModeMessage)
	assert.True(t, msg.SubmitKey("ctrl+s"))
	assert.False(t, msg.SubmitKey("enter"))

	url := NewInputModel(ModeURL)
	assert.True(t, url.SubmitKey("enter"))
	assert.True(t, url.SubmitKey("ctrl+s"))
}

func TestInputModelShowsError(t *testing.T) {
	m := NewInputModel(ModeMessage)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(InputModel)
	assert.Contains(t, m.View(), "message is required")
}

func TestInputModelView(t *testing.T) {
	assert.Contains(t, NewInputModel(ModeMessage).View(), "ctrl+s submit")
	assert.Contains(t, NewInputModel(ModeURL).View(), "Enter the link to check")
}
