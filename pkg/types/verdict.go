package types

// SourceStatus is the outcome reported by one reputation source for one URL.
type SourceStatus string

const (
	StatusSafe       SourceStatus = "safe"
	StatusMalicious  SourceStatus = "malicious"
	StatusSuspicious SourceStatus = "suspicious"
	StatusError      SourceStatus = "error"
	StatusPending    SourceStatus = "pending"
)

// StatusRank orders statuses by risk for combining heuristics:
// malicious > suspicious > safe. Error and pending rank lowest.
func StatusRank(s SourceStatus) int {
	switch s {
	case StatusMalicious:
		return 3
	case StatusSuspicious:
		return 2
	case StatusSafe:
		return 1
	default:
		return 0
	}
}

// Escalate returns the riskier of current and next.
func Escalate(current, next SourceStatus) SourceStatus {
	if StatusRank(next) > StatusRank(current) {
		return next
	}
	return current
}

// SourceResult is one reputation source's answer for a URL.
type SourceResult struct {
	Provider string       `json:"source"`
	Status   SourceStatus `json:"result"`
	Detail   string       `json:"details,omitempty"`
	// Handle is an opaque provider scan id used to resolve a pending result.
	Handle string `json:"scan_id,omitempty"`
}

// URLVerdict aggregates every source queried for a single URL occurrence.
type URLVerdict struct {
	URL         string         `json:"url"`
	IsMalicious bool           `json:"is_url_malicious"`
	Sources     []SourceResult `json:"scan_sources"`
	HasPending  bool           `json:"pending_scans"`
}

// Recompute derives IsMalicious and HasPending from Sources. A URL is
// malicious when any settled source reports malicious or suspicious.
func (v *URLVerdict) Recompute() {
	v.IsMalicious = false
	v.HasPending = false
	for _, s := range v.Sources {
		switch s.Status {
		case StatusPending:
			v.HasPending = true
		case StatusMalicious, StatusSuspicious:
			v.IsMalicious = true
		}
	}
}

// Source returns the first result reported by the named provider.
func (v URLVerdict) Source(provider string) (SourceResult, bool) {
	for _, s := range v.Sources {
		if s.Provider == provider {
			return s, true
		}
	}
	return SourceResult{}, false
}
