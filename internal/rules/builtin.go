package rules

import "github.com/buemura/scamscan/pkg/types"

// Builtin returns the built-in detection rules. Each call returns a fresh
// copy so callers may append to it freely.
func Builtin() []types.DetectionRule {
	return []types.DetectionRule{
		{
			Kind: types.RuleKeyword,
			Patterns: []string{
				"click here", "urgent", "kyc update", "otp", "claim now", "congratulations",
				"you have won", "lottery", "prize", "immediate action", "verify now",
				"suspended account", "click link", "limited time", "act now", "expires today",
				"free gift", "cash prize", "bank account", "credit card", "social security",
				"tax refund", "government grant", "inheritance", "prince", "attorney",
				"beneficiary", "transfer money", "wire transfer", "bitcoin", "cryptocurrency",
			},
			Severity:    types.SeverityHigh,
			Description: "Common scam keywords detected",
		},
		{
			Kind: types.RuleDomain,
			Patterns: []string{
				".xyz", ".top", ".click", ".tk", ".ml", ".ga", ".cf", "bit.ly", "tinyurl.com",
				"short.link", "tiny.cc", "t.co", "goo.gl", "ow.ly", "buff.ly", "is.gd",
				"rebrand.ly", "cutt.ly", "linktr.ee",
			},
			Severity:    types.SeverityMedium,
			Description: "Suspicious or shortened domains detected",
		},
		{
			Kind: types.RulePattern,
			Patterns: []string{
				"secure.*verify", "account.*suspended", "update.*payment", "confirm.*identity",
				"reset.*password", "unlock.*account", "verify.*information", "update.*details",
				"click.*link.*below", "download.*attachment", "open.*link", "visit.*site",
			},
			Severity:    types.SeverityHigh,
			Description: "Phishing intent patterns detected",
		},
	}
}
