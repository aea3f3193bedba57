package types

import "time"

// Verdict is the three-tier classification of a message.
type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictScam       Verdict = "scam"
)

// ScanOutcome is the result of analyzing one message.
type ScanOutcome struct {
	ID            string       `json:"id"`
	Message       string       `json:"message"`
	Verdict       Verdict      `json:"verdict"`
	Confidence    int          `json:"confidence"`
	Findings      []Finding    `json:"detected_threats"`
	ExtractedURLs []string     `json:"extracted_urls"`
	URLVerdicts   []URLVerdict `json:"url_scan_results,omitempty"`
	Narrative     string       `json:"ai_analysis,omitempty"`
	CreatedAt     time.Time    `json:"timestamp"`
}

// HasPending reports whether any URL verdict still awaits a provider.
func (o ScanOutcome) HasPending() bool {
	for _, v := range o.URLVerdicts {
		if v.HasPending {
			return true
		}
	}
	return false
}

// ReportedItem is a message a user confirmed as a threat, with its URLs.
type ReportedItem struct {
	Message string   `json:"message"`
	URLs    []string `json:"urls"`
}
