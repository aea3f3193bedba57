package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
)

// MarkdownFormatter renders outcomes as Markdown tables suitable for
// pasting into tickets or incident notes.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, outcomes []types.ScanOutcome) error {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "## %s (%d%% confidence)\n\n", strings.ToUpper(string(o.Verdict)), o.Confidence)
		fmt.Fprintf(w, "> %s\n\n", escapeMarkdown(strings.ReplaceAll(o.Message, "\n", " ")))

		if len(o.Findings) == 0 {
			fmt.Fprintln(w, "_No findings._")
		} else {
			fmt.Fprintln(w, "| Severity | Type | Description | Evidence |")
			fmt.Fprintln(w, "|----------|------|-------------|----------|")
			for _, finding := range sortedFindings(o.Findings) {
				fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
					severityBadge(finding.Severity),
					finding.Kind,
					escapeMarkdown(finding.Description),
					escapeMarkdown(evidence(finding)),
				)
			}
			fmt.Fprintf(w, "\n**Summary:** %s\n", summary(o.Findings))
		}

		if len(o.URLVerdicts) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "| URL | Status | Sources |")
			fmt.Fprintln(w, "|-----|--------|---------|")
			for _, v := range o.URLVerdicts {
				fmt.Fprintf(w, "| %s | %s | %s |\n", escapeMarkdown(v.URL), urlStatus(v), escapeMarkdown(sourceList(v)))
			}
		}

		if o.Narrative != "" {
			fmt.Fprintf(w, "\n### AI analysis\n\n%s\n", o.Narrative)
		}
	}

	return nil
}

// severityBadge returns a bold, uppercased severity label for Markdown.
func severityBadge(s types.Severity) string {
	return fmt.Sprintf("**%s**", string(s))
}

// escapeMarkdown escapes pipe characters that would break Markdown tables.
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
