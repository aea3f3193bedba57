package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/tui/styles"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AnalyzeFunc produces an outcome for input.
type AnalyzeFunc func(ctx context.Context, input string) types.ScanOutcome

// ScanCompleteMsg is sent when an analysis finishes.
type ScanCompleteMsg struct {
	Outcome types.ScanOutcome
}

// ScanModel is the view model for the analysis progress view.
type ScanModel struct {
	spinner spinner.Model
	analyze AnalyzeFunc
	input   string
	timeout time.Duration
	done    bool
	outcome types.ScanOutcome
}

// NewScanModel creates a progress view that runs analyze on input.
func NewScanModel(analyze AnalyzeFunc, input string, timeout time.Duration) ScanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.ColorAccent)

	return ScanModel{
		spinner: sp,
		analyze: analyze,
		input:   input,
		timeout: timeout,
	}
}

// Init starts the spinner and launches the analysis.
func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

// Update handles spinner ticks and completion.
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ScanCompleteMsg:
		m.done = true
		m.outcome = msg.Outcome
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the analysis progress.
func (m ScanModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("scamscan — Interactive Mode"))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(fmt.Sprintf("Analysis complete! Found %d findings.\n", len(m.outcome.Findings)))
	} else {
		b.WriteString(fmt.Sprintf("%s Analyzing...\n", m.spinner.View()))
		b.WriteString(fmt.Sprintf("  Input: %s\n", truncate(strings.ReplaceAll(m.input, "\n", " "), 60)))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("ctrl+c quit"))

	return b.String()
}

func (m ScanModel) run() tea.Cmd {
	analyze, input, timeout := m.analyze, m.input, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return ScanCompleteMsg{Outcome: analyze(ctx, input)}
	}
}
