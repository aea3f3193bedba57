package narrative

import (
	"regexp"
	"strings"
)

// Analysis is a narrative split into its labelled sections. Missing
// sections are left empty.
type Analysis struct {
	Verdict    string   `json:"verdict,omitempty"`
	Risk       string   `json:"critical_risk,omitempty"`
	Findings   []string `json:"key_findings,omitempty"`
	Actions    []string `json:"required_actions,omitempty"`
	Insight    string   `json:"security_insight,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Links      []string `json:"suspicious_links,omitempty"`
}

var (
	labelLine   = regexp.MustCompile(`^[#*\s]*([A-Z][A-Z ]+[A-Z])[*:\s]*$`)
	listMarker  = regexp.MustCompile(`^\s*(?:[•\-*]+|\d+[.)])\s*`)
	keyFindings = regexp.MustCompile(`(?is)KEY FINDINGS(.*?)(?:REQUIRED ACTIONS|SECURITY INSIGHT|ANALYSIS CONFIDENCE|$)`)
)

// Parse splits text into sections. Unknown labels and text before the
// first label are ignored.
func Parse(text string) Analysis {
	sections := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(text, "\n") {
		if m := labelLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil && isLabel(m[1]) {
			current = m[1]
			continue
		}
		if current == "" || strings.TrimSpace(line) == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}

	return Analysis{
		Verdict:    joinProse(sections[SectionVerdict]),
		Risk:       joinProse(sections[SectionRisk]),
		Findings:   listItems(sections[SectionFindings]),
		Actions:    listItems(sections[SectionActions]),
		Insight:    joinProse(sections[SectionInsight]),
		Confidence: joinProse(sections[SectionConfidence]),
		Links:      listItems(trimLinkHeader(sections[SectionLinks])),
	}
}

// KeyFindings extracts the bullet phrases of the KEY FINDINGS section.
// It tolerates the label sharing a line with content and a missing
// terminating section.
func KeyFindings(text string) []string {
	m := keyFindings.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return listItems(strings.Split(m[1], "\n"))
}

func isLabel(s string) bool {
	for _, l := range sectionOrder {
		if s == l {
			return true
		}
	}
	return false
}

func joinProse(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strings.TrimSpace(l))
	}
	return strings.Trim(strings.Join(parts, " "), `" `)
}

func listItems(lines []string) []string {
	var items []string
	for _, l := range lines {
		item := strings.TrimSpace(listMarker.ReplaceAllString(l, ""))
		item = strings.Trim(item, "*_ ")
		if item == "" || strings.HasPrefix(strings.ToLower(item), "maximum ") {
			continue
		}
		items = append(items, item)
	}
	return items
}

func trimLinkHeader(lines []string) []string {
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "Possible suspicious links") {
		return lines[1:]
	}
	return lines
}
