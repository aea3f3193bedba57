// Package score folds findings into a verdict and confidence.
package score

import (
	"fmt"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
)

// Result is the scoring summary of a set of findings.
type Result struct {
	Verdict    types.Verdict `json:"verdict"`
	Confidence int           `json:"confidence"`
	Total      int           `json:"total"`
	MaxWeight  int           `json:"max_weight"`
}

// Compute sums finding weights and maps them to a verdict:
//
//	max >= 3 or total >= 6  scam,       min(95, 70 + 3*total)
//	max >= 2 or total >= 3  suspicious, min(85, 50 + 5*total)
//	otherwise               safe,       max(15, 90 - 10*total)
func Compute(findings []types.Finding) Result {
	var total, maxWeight int
	for _, f := range findings {
		w := f.Weight()
		total += w
		if w > maxWeight {
			maxWeight = w
		}
	}

	r := Result{Total: total, MaxWeight: maxWeight}
	switch {
	case maxWeight >= 3 || total >= 6:
		r.Verdict = types.VerdictScam
		r.Confidence = min(95, 70+total*3)
	case maxWeight >= 2 || total >= 3:
		r.Verdict = types.VerdictSuspicious
		r.Confidence = min(85, 50+total*5)
	default:
		r.Verdict = types.VerdictSafe
		r.Confidence = max(15, 90-total*10)
	}
	r.Confidence = max(0, min(100, r.Confidence))
	return r
}

// URLFindings emits one high-severity url finding for every verdict that
// is malicious, naming the sources that flagged it.
func URLFindings(verdicts []types.URLVerdict) []types.Finding {
	var findings []types.Finding
	for _, v := range verdicts {
		if !v.IsMalicious {
			continue
		}
		var flagged []string
		for _, s := range v.Sources {
			if s.Status != types.StatusMalicious && s.Status != types.StatusSuspicious {
				continue
			}
			detail := s.Detail
			if detail == "" {
				detail = string(s.Status)
			}
			flagged = append(flagged, s.Provider+": "+detail)
		}
		if len(flagged) == 0 {
			continue
		}
		findings = append(findings, types.Finding{
			Kind:        types.KindURL,
			Severity:    types.SeverityHigh,
			Description: fmt.Sprintf("Malicious URL detected: %s (%s)", v.URL, strings.Join(flagged, ", ")),
			Origin:      types.OriginURLScan,
			URL:         v.URL,
		})
	}
	return findings
}
