package views

import (
	"fmt"
	"strings"

	"github.com/buemura/scamscan/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode identifies what the user wants to check.
type Mode string

const (
	ModeMessage Mode = "message"
	ModeURL     Mode = "url"
	ModeHistory Mode = "history"
)

// MenuItem is one selectable entry of the main menu.
type MenuItem struct {
	Mode        Mode
	Name        string
	Description string
}

// DefaultMenuItems returns the entries of the main menu.
func DefaultMenuItems() []MenuItem {
	return []MenuItem{
		{Mode: ModeMessage, Name: "Analyze message", Description: "Scan an SMS, email or chat message for scam indicators"},
		{Mode: ModeURL, Name: "Check URL", Description: "Check a single link against heuristics and reputation providers"},
		{Mode: ModeHistory, Name: "Recent analyses", Description: "Reopen a saved outcome and resolve pending scans"},
	}
}

// MenuModel is the view model for the main menu.
type MenuModel struct {
	items  []MenuItem
	cursor int
}

// NewMenuModel creates a menu with the given items.
func NewMenuModel(items []MenuItem) MenuModel {
	return MenuModel{items: items}
}

// Init returns nil (no initial command).
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles key navigation in the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the main menu.
func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("scamscan — Interactive Mode"))
	b.WriteString("\n\n")
	b.WriteString(styles.HeaderStyle.Render("What do you want to check?"))
	b.WriteString("\n")

	for i, item := range m.items {
		cursor := "  "
		nameStyle := styles.HelpStyle
		if i == m.cursor {
			cursor = styles.CursorStyle.Render("> ")
			nameStyle = styles.SelectedStyle
		}

		b.WriteString(fmt.Sprintf("%s%s  %s\n",
			cursor,
			nameStyle.Render(item.Name),
			styles.HelpStyle.Render(item.Description),
		))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navigate • enter select • q quit"))

	return b.String()
}

// Selected returns the currently highlighted item, or nil if empty.
func (m MenuModel) Selected() *MenuItem {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.cursor]
}

// Cursor returns the current cursor position.
func (m MenuModel) Cursor() int {
	return m.cursor
}

// Items returns the menu items.
func (m MenuModel) Items() []MenuItem {
	return m.items
}
