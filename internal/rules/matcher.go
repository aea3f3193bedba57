// Package rules evaluates keyword, pattern and domain detection rules
// against a message and its extracted URLs.
package rules

import (
	"regexp"
	"strings"
	"sync"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/pkg/types"
)

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*regexp.Regexp)
)

// Compile turns a rule pattern into a case-insensitive expression, with
// every "*" expanded to ".*". Patterns that are not valid expressions are
// matched literally instead.
func Compile(pattern string) *regexp.Regexp {
	cacheMu.RLock()
	re, ok := cache[pattern]
	cacheMu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile("(?i)" + strings.ReplaceAll(pattern, "*", ".*"))
	if err != nil {
		logging.Logger.Debugw("rule pattern is not a valid expression, matching literally",
			"pattern", pattern, "error", err)
		parts := strings.Split(pattern, "*")
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		re = regexp.MustCompile("(?i)" + strings.Join(parts, ".*"))
	}

	cacheMu.Lock()
	cache[pattern] = re
	cacheMu.Unlock()
	return re
}

// Match evaluates every rule independently and returns one finding per
// concrete match. Keyword and pattern rules produce a finding for each
// non-overlapping match in text; domain rules produce one finding for each
// URL whose lower-cased form matches.
func Match(text string, urls []string, ruleSet []types.DetectionRule) []types.Finding {
	var findings []types.Finding

	lowered := make([]string, len(urls))
	for i, u := range urls {
		lowered[i] = strings.ToLower(u)
	}

	for _, rule := range ruleSet {
		for _, pattern := range rule.Patterns {
			if pattern == "" {
				continue
			}
			re := Compile(pattern)

			switch rule.Kind {
			case types.RuleKeyword, types.RulePattern:
				for _, loc := range re.FindAllStringIndex(text, -1) {
					if loc[0] == loc[1] {
						continue
					}
					findings = append(findings, types.Finding{
						Kind:        types.FindingKind(rule.Kind),
						Severity:    rule.Severity,
						Description: rule.Description,
						Origin:      types.OriginLocal,
						Pattern:     pattern,
						Span:        &types.Span{Start: loc[0], End: loc[1]},
						MatchedText: text[loc[0]:loc[1]],
					})
				}
			case types.RuleDomain:
				for i, u := range urls {
					if re.MatchString(lowered[i]) {
						findings = append(findings, types.Finding{
							Kind:        types.KindDomain,
							Severity:    rule.Severity,
							Description: rule.Description,
							Origin:      types.OriginLocal,
							Pattern:     pattern,
							URL:         u,
						})
					}
				}
			}
		}
	}

	return findings
}
