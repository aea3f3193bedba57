package types

// Severity represents the severity level of a finding or rule.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Weight returns the scoring weight of the severity: high 3, medium 2, low 1.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// SeverityRank returns a numeric rank for sorting (lower = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// FindingKind classifies what produced a finding.
type FindingKind string

const (
	KindKeyword   FindingKind = "keyword"
	KindDomain    FindingKind = "domain"
	KindPattern   FindingKind = "pattern"
	KindURL       FindingKind = "url"
	KindStructure FindingKind = "structure"
	KindIP        FindingKind = "ip"
	KindSubdomain FindingKind = "subdomain"
)

// Finding origins that are not reputation provider names.
const (
	OriginLocal      = "local"
	OriginUserReport = "user-report"
	OriginURLScan    = "url-scan"
)

// UserReportWeight is the fixed scoring weight of findings that come from
// previously reported threats. It is higher than any single rule weight.
const UserReportWeight = 5

// Span is a half-open byte range [Start, End) into the analyzed message.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Finding is a single detected indicator of risk.
type Finding struct {
	Kind        FindingKind `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Origin      string      `json:"source"`
	Pattern     string      `json:"pattern,omitempty"`
	Span        *Span       `json:"position,omitempty"`
	MatchedText string      `json:"matched_text,omitempty"`
	URL         string      `json:"url,omitempty"`
}

// Weight returns the scoring weight of the finding.
func (f Finding) Weight() int {
	if f.Origin == OriginUserReport {
		return UserReportWeight
	}
	return f.Severity.Weight()
}
