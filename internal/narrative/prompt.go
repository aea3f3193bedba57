package narrative

// Section labels the model is asked to emit, in order.
const (
	SectionVerdict    = "INSTANT VERDICT"
	SectionRisk       = "CRITICAL RISK"
	SectionFindings   = "KEY FINDINGS"
	SectionActions    = "REQUIRED ACTIONS"
	SectionInsight    = "SECURITY INSIGHT"
	SectionConfidence = "ANALYSIS CONFIDENCE"
	SectionLinks      = "HYPERLINK SCAM WARNING"
)

// sectionOrder lists every label Parse recognizes.
var sectionOrder = []string{
	SectionVerdict,
	SectionRisk,
	SectionFindings,
	SectionActions,
	SectionInsight,
	SectionConfidence,
	SectionLinks,
}

const instructions = `You are a fraud and phishing analyst reviewing a message a user received. Be direct and precise.

Answer using exactly these sections, each label on its own line:

INSTANT VERDICT
One sentence stating whether the message is a threat.

CRITICAL RISK
The most severe risk in the message, with a short real-world comparison.

KEY FINDINGS
• Up to three short phrases naming the concrete warning signs, one per bullet.

REQUIRED ACTIONS
1. Numbered, specific steps the recipient should take.

SECURITY INSIGHT
One security principle that applies to this message.

ANALYSIS CONFIDENCE
A percentage followed by a short justification.

Message to analyze:`

// BuildPrompt returns the full user prompt for message.
func BuildPrompt(message string) string {
	return instructions + "\n\n\"" + message + "\""
}
