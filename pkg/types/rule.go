package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// RuleKind selects how a detection rule is evaluated.
type RuleKind string

const (
	RuleKeyword RuleKind = "keyword"
	RuleDomain  RuleKind = "domain"
	RulePattern RuleKind = "pattern"
)

// DetectionRule is a group of patterns sharing a kind, severity and description.
// Patterns may contain "*" which matches any run of characters.
type DetectionRule struct {
	Kind        RuleKind `json:"type" yaml:"type"`
	Patterns    []string `json:"patterns" yaml:"patterns"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

// Validate checks that the rule can be evaluated.
func (r DetectionRule) Validate() error {
	switch r.Kind {
	case RuleKeyword, RuleDomain, RulePattern:
	default:
		return fmt.Errorf("unknown rule type %q", r.Kind)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule %q has no patterns", r.Description)
	}
	for _, p := range r.Patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("rule %q has an empty pattern", r.Description)
		}
	}
	return nil
}

// Fingerprint identifies a rule by its content, ignoring pattern case.
func (r DetectionRule) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(string(r.Kind) + "\n" + string(r.Severity) + "\n"))
	for _, p := range r.Patterns {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p)) + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
