package views

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/tui/styles"
	"github.com/buemura/scamscan/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
)

// ExportPath is where the e key writes the outcome.
const ExportPath = "scamscan-results.json"

// ResolveFunc re-queries pending URL verdicts of an outcome.
type ResolveFunc func(ctx context.Context, o types.ScanOutcome) types.ScanOutcome

// ResolvedMsg carries an outcome after pending verdicts were resolved.
type ResolvedMsg struct {
	Outcome types.ScanOutcome
}

// ResultsModel is the view model for displaying an analysis outcome.
type ResultsModel struct {
	outcome   types.ScanOutcome
	resolve   ResolveFunc
	timeout   time.Duration
	cursor    int
	offset    int
	maxRows   int
	resolving bool
	exported  bool
	exportErr string
}

// NewResultsModel creates a results view. resolve may be nil.
func NewResultsModel(o types.ScanOutcome, resolve ResolveFunc, timeout time.Duration) ResultsModel {
	return ResultsModel{
		outcome: o,
		resolve: resolve,
		timeout: timeout,
		maxRows: 12,
	}
}

// Outcome returns the displayed outcome.
func (m ResultsModel) Outcome() types.ScanOutcome {
	return m.outcome
}

// Init returns nil (no initial command).
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles key events for scrolling, resolution and export.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResolvedMsg:
		m.outcome = msg.Outcome
		m.resolving = false
		if m.cursor >= len(m.outcome.Findings) {
			m.cursor = max(0, len(m.outcome.Findings)-1)
		}
		m.offset = min(m.offset, m.cursor)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.outcome.Findings)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxRows {
					m.offset = m.cursor - m.maxRows + 1
				}
			}
		case "r":
			if m.resolve != nil && !m.resolving && m.outcome.HasPending() {
				m.resolving = true
				return m, m.runResolve()
			}
		case "e":
			m.exportJSON()
		case "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the outcome.
func (m ResultsModel) View() string {
	var b strings.Builder
	o := m.outcome

	b.WriteString(styles.TitleStyle.Render("scamscan — Results"))
	b.WriteString("\n\n")

	verdict := styles.VerdictStyle(string(o.Verdict)).Render(strings.ToUpper(string(o.Verdict)))
	b.WriteString(fmt.Sprintf("Verdict: %s  (%d%% confidence)\n\n", verdict, o.Confidence))

	findings := o.Findings
	if len(findings) == 0 {
		b.WriteString("No findings discovered.\n")
	} else {
		b.WriteString(m.summaryLine())
		b.WriteString("\n\n")

		header := fmt.Sprintf("  %-8s %-10s %s", "SEVERITY", "TYPE", "DESCRIPTION")
		b.WriteString(styles.HeaderStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("─", 80))
		b.WriteString("\n")

		end := min(m.offset+m.maxRows, len(findings))
		for i := m.offset; i < end; i++ {
			f := findings[i]
			cursor := "  "
			if i == m.cursor {
				cursor = styles.CursorStyle.Render("> ")
			}
			severity := styles.SeverityStyle(string(f.Severity)).Render(fmt.Sprintf("%-8s", f.Severity))
			b.WriteString(fmt.Sprintf("%s%s %-10s %s\n", cursor, severity, f.Kind, truncate(f.Description, 58)))
		}

		if len(findings) > m.maxRows {
			b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d findings\n", m.offset+1, end, len(findings)))
		}

		if m.cursor < len(findings) {
			b.WriteString("\n")
			b.WriteString(detailView(findings[m.cursor]))
			b.WriteString("\n")
		}
	}

	if len(o.URLVerdicts) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("URL reputation"))
		b.WriteString("\n")
		for _, v := range o.URLVerdicts {
			b.WriteString(urlLine(v))
			b.WriteString("\n")
		}
	}

	if o.Narrative != "" {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("AI analysis"))
		b.WriteString("\n")
		b.WriteString(o.Narrative)
		b.WriteString("\n")
	}

	if m.resolving {
		b.WriteString("\n")
		b.WriteString(styles.SelectedStyle.Render("Resolving pending scans..."))
	}
	if m.exported {
		b.WriteString("\n")
		b.WriteString(styles.SelectedStyle.Render("Results exported to " + ExportPath))
	}
	if m.exportErr != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.exportErr))
	}

	help := "↑/↓ scroll • e export JSON • esc back • q quit"
	if o.HasPending() && m.resolve != nil {
		help = "↑/↓ scroll • r resolve pending • e export JSON • esc back • q quit"
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(help))

	return b.String()
}

func (m ResultsModel) summaryLine() string {
	counts := map[types.Severity]int{}
	for _, f := range m.outcome.Findings {
		counts[f.Severity]++
	}

	parts := []string{}
	for _, sev := range []types.Severity{types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		if c := counts[sev]; c > 0 {
			parts = append(parts, styles.SeverityStyle(string(sev)).Render(fmt.Sprintf("%s: %d", sev, c)))
		}
	}

	return fmt.Sprintf("Total: %d findings  [%s]", len(m.outcome.Findings), strings.Join(parts, "  "))
}

func detailView(f types.Finding) string {
	lines := []string{
		fmt.Sprintf("Type: %s", f.Kind),
		fmt.Sprintf("Severity: %s", f.Severity),
		fmt.Sprintf("Description: %s", f.Description),
		fmt.Sprintf("Origin: %s", f.Origin),
	}
	if f.MatchedText != "" {
		lines = append(lines, fmt.Sprintf("Matched: %s", f.MatchedText))
	}
	if f.URL != "" {
		lines = append(lines, fmt.Sprintf("URL: %s", f.URL))
	}
	return styles.BorderStyle.Render(strings.Join(lines, "\n"))
}

func urlLine(v types.URLVerdict) string {
	status := styles.SafeStyle.Render("clean")
	switch {
	case v.IsMalicious:
		status = styles.SeverityHighStyle.Render("malicious")
	case v.HasPending:
		status = styles.SeverityMediumStyle.Render("pending")
	}

	sources := make([]string, 0, len(v.Sources))
	for _, s := range v.Sources {
		sources = append(sources, fmt.Sprintf("%s=%s", s.Provider, s.Status))
	}
	return fmt.Sprintf("  %s  %s  %s", truncate(v.URL, 50), status, styles.HelpStyle.Render(strings.Join(sources, ", ")))
}

func (m ResultsModel) runResolve() tea.Cmd {
	resolve, o, timeout := m.resolve, m.outcome, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return ResolvedMsg{Outcome: resolve(ctx, o)}
	}
}

func (m *ResultsModel) exportJSON() {
	data, err := json.MarshalIndent(m.outcome, "", "  ")
	if err != nil {
		m.exportErr = fmt.Sprintf("export failed: %v", err)
		return
	}

	if err := os.WriteFile(ExportPath, data, 0644); err != nil {
		m.exportErr = fmt.Sprintf("export failed: %v", err)
		return
	}

	m.exported = true
	m.exportErr = ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
