package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/tui/styles"
	"github.com/buemura/scamscan/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
)

// HistoryFunc lists saved outcomes, newest first.
type HistoryFunc func(ctx context.Context) ([]types.ScanOutcome, error)

// HistoryLoadedMsg carries the result of a history lookup.
type HistoryLoadedMsg struct {
	Outcomes []types.ScanOutcome
	Err      error
}

// LoadHistory returns a command that fetches the history with list.
func LoadHistory(list HistoryFunc, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		outcomes, err := list(ctx)
		return HistoryLoadedMsg{Outcomes: outcomes, Err: err}
	}
}

// HistoryModel lists recent analyses.
type HistoryModel struct {
	outcomes []types.ScanOutcome
	cursor   int
	loading  bool
	err      error
}

// NewHistoryModel creates a history view waiting for HistoryLoadedMsg.
func NewHistoryModel() HistoryModel {
	return HistoryModel{loading: true}
}

// Init returns nil (no initial command).
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles the loaded history and cursor movement.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		m.loading = false
		m.outcomes = msg.Outcomes
		m.err = msg.Err
		m.cursor = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.outcomes)-1 {
				m.cursor++
			}
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// Selected returns the highlighted outcome, or nil when there is none.
func (m HistoryModel) Selected() *types.ScanOutcome {
	if m.cursor >= len(m.outcomes) {
		return nil
	}
	return &m.outcomes[m.cursor]
}

// View renders the history list.
func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("scamscan — Recent analyses"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading history...\n")
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("History unavailable: " + m.err.Error()))
		b.WriteString("\n")
	case len(m.outcomes) == 0:
		b.WriteString("No analyses in history.\n")
	default:
		header := fmt.Sprintf("  %-16s %-10s %-5s %s", "TIME", "VERDICT", "CONF", "MESSAGE")
		b.WriteString(styles.HeaderStyle.Render(header))
		b.WriteString("\n")
		for i, o := range m.outcomes {
			cursor := "  "
			if i == m.cursor {
				cursor = styles.CursorStyle.Render("> ")
			}
			verdict := styles.VerdictStyle(string(o.Verdict)).Render(fmt.Sprintf("%-10s", o.Verdict))
			b.WriteString(fmt.Sprintf("%s%-16s %s %3d%%  %s\n",
				cursor,
				o.CreatedAt.Local().Format("2006-01-02 15:04"),
				verdict,
				o.Confidence,
				truncate(oneLine(o.Message), 44),
			))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navigate • enter open • esc back • q quit"))
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
