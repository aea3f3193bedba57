package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/buemura/scamscan/pkg/types"
)

// Formatter renders scan outcomes to a writer.
type Formatter interface {
	Format(w io.Writer, outcomes []types.ScanOutcome) error
}

// GetFormatter returns the appropriate formatter for the given format string.
func GetFormatter(format string) (Formatter, error) {
	switch format {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	case "pdf":
		return &PDFFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: table, json, markdown, html, pdf)", format)
	}
}

// sortedFindings returns a copy of the findings, most severe first. Findings
// of equal severity keep their original order.
func sortedFindings(findings []types.Finding) []types.Finding {
	out := append([]types.Finding(nil), findings...)
	sort.SliceStable(out, func(i, j int) bool {
		return types.SeverityRank(out[i].Severity) < types.SeverityRank(out[j].Severity)
	})
	return out
}

func severityCounts(findings []types.Finding) map[types.Severity]int {
	counts := map[types.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func summary(findings []types.Finding) string {
	counts := severityCounts(findings)
	return fmt.Sprintf("%d findings (%d high, %d medium, %d low)",
		len(findings),
		counts[types.SeverityHigh],
		counts[types.SeverityMedium],
		counts[types.SeverityLow],
	)
}

// urlStatus condenses a URL verdict into a single label.
func urlStatus(v types.URLVerdict) string {
	switch {
	case v.IsMalicious:
		return "malicious"
	case v.HasPending:
		return "pending"
	default:
		return "clean"
	}
}

func evidence(f types.Finding) string {
	if f.MatchedText != "" {
		return f.MatchedText
	}
	return f.URL
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
