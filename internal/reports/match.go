// Package reports turns previously reported threats into findings and,
// in the background, into new detection rules.
package reports

import (
	"strings"

	"github.com/buemura/scamscan/pkg/types"
)

// Match compares message and urls against the reported corpus. Every item
// whose trimmed message equals the trimmed message yields one finding, and
// every extracted URL listed by an item yields one more. Repeated reports
// are not collapsed.
func Match(message string, urls []string, corpus []types.ReportedItem) []types.Finding {
	var findings []types.Finding
	trimmed := strings.TrimSpace(message)

	extracted := make(map[string]bool, len(urls))
	for _, u := range urls {
		extracted[u] = true
	}

	for _, item := range corpus {
		if reported := strings.TrimSpace(item.Message); reported != "" && trimmed != "" && reported == trimmed {
			findings = append(findings, types.Finding{
				Kind:        types.KindPattern,
				Severity:    types.SeverityHigh,
				Description: "This message was reported as a threat by a user.",
				Origin:      types.OriginUserReport,
				MatchedText: message,
			})
		}
		for _, u := range item.URLs {
			if !extracted[u] {
				continue
			}
			findings = append(findings, types.Finding{
				Kind:        types.KindURL,
				Severity:    types.SeverityHigh,
				Description: "This URL was reported as a threat by a user: " + u,
				Origin:      types.OriginUserReport,
				URL:         u,
			})
		}
	}
	return findings
}
