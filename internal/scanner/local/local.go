// Package local scores URL structure without any network access.
package local

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
)

// ProviderName identifies the local heuristic among URL verdict sources.
const ProviderName = "local"

// Result is the outcome of a local check: the riskiest status any heuristic
// produced and the reasons that fired, in evaluation order.
type Result struct {
	Status  types.SourceStatus `json:"status"`
	Reasons []string           `json:"reasons,omitempty"`
}

// Check runs every heuristic against raw. Heuristics only escalate the
// status (safe < suspicious < malicious). A URL that cannot be parsed
// yields StatusError.
func Check(raw string) Result {
	u, err := types.NormalizeURL(raw)
	if err != nil {
		return Result{Status: types.StatusError, Reasons: []string{"Invalid URL format"}}
	}

	t := newTarget(u)
	res := Result{Status: types.StatusSafe}
	for _, h := range Heuristics() {
		if hit := h.Check(t); hit != nil {
			res.Reasons = append(res.Reasons, hit.reason)
			res.Status = types.Escalate(res.Status, hit.status)
		}
	}
	return res
}

// Source runs Check and packages it as the "local" verdict source.
func Source(raw string) types.SourceResult {
	res := Check(raw)
	return types.SourceResult{
		Provider: ProviderName,
		Status:   res.Status,
		Detail:   strings.Join(res.Reasons, "; "),
	}
}

var dottedQuad = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

// StructureFindings reports message-level findings about the shape of an
// extracted URL: credential-bait words anywhere in it, a raw IP host and
// deeply nested subdomains. URLs without a parsable host produce nothing.
func StructureFindings(raw string) []types.Finding {
	u, err := types.NormalizeURL(raw)
	if err != nil {
		return nil
	}
	host := u.Hostname()

	var findings []types.Finding
	if strings.Contains(raw, "secure") || strings.Contains(raw, "verify") || strings.Contains(raw, "account") {
		findings = append(findings, types.Finding{
			Kind:        types.KindStructure,
			Severity:    types.SeverityMedium,
			Description: fmt.Sprintf("Suspicious URL structure: %s", raw),
			Origin:      types.OriginLocal,
			URL:         raw,
		})
	}
	if dottedQuad.MatchString(host) {
		findings = append(findings, types.Finding{
			Kind:        types.KindIP,
			Severity:    types.SeverityHigh,
			Description: fmt.Sprintf("Direct IP address used: %s", host),
			Origin:      types.OriginLocal,
			URL:         raw,
		})
	}
	if len(strings.Split(host, ".")) > 4 {
		findings = append(findings, types.Finding{
			Kind:        types.KindSubdomain,
			Severity:    types.SeverityMedium,
			Description: fmt.Sprintf("Excessive subdomains: %s", host),
			Origin:      types.OriginLocal,
			URL:         raw,
		})
	}
	return findings
}

// Host returns the lower-cased hostname of raw, or "" when it cannot be
// parsed.
func Host(raw string) string {
	u, err := types.NormalizeURL(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
