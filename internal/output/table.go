package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders outcomes as colored terminal tables.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, outcomes []types.ScanOutcome) error {
	for _, o := range outcomes {
		fmt.Fprintf(w, "\n%s  %d%% confidence", colorVerdict(o.Verdict), o.Confidence)
		if o.ID != "" {
			fmt.Fprintf(w, "  [%s]", o.ID)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Message: %s\n", truncate(strings.ReplaceAll(o.Message, "\n", " "), 80))

		if len(o.Findings) == 0 {
			fmt.Fprintln(w, "  No findings.")
		} else {
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"Severity", "Type", "Description", "Evidence"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)
			table.SetColumnSeparator("│")
			for _, finding := range sortedFindings(o.Findings) {
				table.Append([]string{
					colorSeverity(finding.Severity),
					string(finding.Kind),
					finding.Description,
					truncate(evidence(finding), 50),
				})
			}
			table.Render()
			fmt.Fprintf(w, "  Summary: %s\n", summary(o.Findings))
		}

		if len(o.URLVerdicts) > 0 {
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"URL", "Status", "Sources"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)
			table.SetColumnSeparator("│")
			for _, v := range o.URLVerdicts {
				table.Append([]string{truncate(v.URL, 60), colorURLStatus(v), sourceList(v)})
			}
			table.Render()
		}

		if o.Narrative != "" {
			fmt.Fprintf(w, "\n%s\n%s\n", color.New(color.Bold).Sprint("AI analysis"), o.Narrative)
		}
	}

	return nil
}

func sourceList(v types.URLVerdict) string {
	parts := make([]string, 0, len(v.Sources))
	for _, s := range v.Sources {
		parts = append(parts, fmt.Sprintf("%s=%s", s.Provider, s.Status))
	}
	return strings.Join(parts, ", ")
}

func colorVerdict(v types.Verdict) string {
	switch v {
	case types.VerdictScam:
		return color.New(color.FgRed, color.Bold).Sprint("SCAM")
	case types.VerdictSuspicious:
		return color.New(color.FgYellow, color.Bold).Sprint("SUSPICIOUS")
	case types.VerdictSafe:
		return color.New(color.FgGreen, color.Bold).Sprint("SAFE")
	default:
		return strings.ToUpper(string(v))
	}
}

func colorURLStatus(v types.URLVerdict) string {
	switch s := urlStatus(v); s {
	case "malicious":
		return color.RedString(s)
	case "pending":
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SeverityHigh:
		return color.RedString("HIGH")
	case types.SeverityMedium:
		return color.YellowString("MEDIUM")
	case types.SeverityLow:
		return color.CyanString("LOW")
	default:
		return string(s)
	}
}
