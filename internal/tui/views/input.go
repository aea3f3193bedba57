package views

import (
	"fmt"
	"strings"

	"github.com/buemura/scamscan/internal/tui/styles"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// InputModel is the view model for entering a message or a URL.
type InputModel struct {
	mode     Mode
	textarea textarea.Model
	err      string
}

// NewInputModel creates an input view for the given mode.
func NewInputModel(mode Mode) InputModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetWidth(70)
	if mode == ModeURL {
		ta.Placeholder = "e.g. https://secure-login.example.xyz/verify"
		ta.SetHeight(1)
	} else {
		ta.Placeholder = "Paste the suspicious message here..."
		ta.SetHeight(8)
	}
	ta.Focus()

	return InputModel{mode: mode, textarea: ta}
}

// Mode returns the input mode.
func (m InputModel) Mode() Mode {
	return m.mode
}

// Init returns the textarea blink command.
func (m InputModel) Init() tea.Cmd {
	return textarea.Blink
}

// SubmitKey reports whether key submits the input in this mode. A message
// may span lines, so it is submitted with ctrl+s; a URL with enter.
func (m InputModel) SubmitKey(key string) bool {
	if key == "ctrl+s" {
		return true
	}
	return m.mode == ModeURL && key == "enter"
}

// Update handles input events.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.SubmitKey(keyMsg.String()) {
		if _, err := m.Validated(); err != nil {
			m.err = err.Error()
		} else {
			m.err = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.err = ""
	return m, cmd
}

// View renders the input form.
func (m InputModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("scamscan — Interactive Mode"))
	b.WriteString("\n\n")
	if m.mode == ModeURL {
		b.WriteString(styles.HeaderStyle.Render("Check URL"))
		b.WriteString("\nEnter the link to check:\n\n")
	} else {
		b.WriteString(styles.HeaderStyle.Render("Analyze message"))
		b.WriteString("\nPaste the message to analyze:\n\n")
	}
	b.WriteString(m.textarea.View())
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.err))
	}

	b.WriteString("\n")
	if m.mode == ModeURL {
		b.WriteString(styles.HelpStyle.Render("enter submit • esc back"))
	} else {
		b.WriteString(styles.HelpStyle.Render("ctrl+s submit • esc back"))
	}

	return b.String()
}

// SetValue replaces the input text.
func (m *InputModel) SetValue(s string) {
	m.textarea.SetValue(s)
}

// Validated returns the trimmed input, or an error when it cannot be
// submitted.
func (m InputModel) Validated() (string, error) {
	value := strings.TrimSpace(m.textarea.Value())
	if value == "" {
		if m.mode == ModeURL {
			return "", fmt.Errorf("url is required")
		}
		return "", fmt.Errorf("message is required")
	}
	if m.mode == ModeURL {
		u, err := types.NormalizeURL(value)
		if err != nil || u.Hostname() == "" {
			return "", fmt.Errorf("invalid url %q", value)
		}
	}
	return value, nil
}
