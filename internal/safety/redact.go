// Package safety implements the outbound redaction and inbound command
// blocklist that sit between the orchestrator and every LLM provider.
package safety

import "regexp"

// Label identifies which pattern a redaction match came from.
type Label string

const (
	LabelCreditCard Label = "credit_card"
	LabelSSN        Label = "ssn"
	LabelAPIKey     Label = "api_key"
	LabelAWSKey     Label = "aws_key"
	LabelPrivateKey Label = "private_key"
)

// redactionRule pairs a compiled pattern with the label it produces.
// Order matters: private_key and aws_key are checked before the more
// generic api_key pattern so a PEM block isn't partially swallowed by it.
type redactionRule struct {
	label   Label
	pattern *regexp.Regexp
}

var redactionRules = []redactionRule{
	{LabelPrivateKey, regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`)},
	{LabelAWSKey, regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{LabelCreditCard, regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`)},
	{LabelSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{LabelAPIKey, regexp.MustCompile(`(?i)\b(?:sk|pk|api|key|token|secret)[_-]?[A-Za-z0-9]{20,}\b`)},
}

// RedactionResult is the outcome of redacting a block of text.
type RedactionResult struct {
	Text     string
	Counts   map[Label]int
	Redacted bool
}

// Redact replaces every match of the recognised PII patterns in text with
// "[REDACTED:<label>]" and returns the rewritten text along with a per-label
// match count. Callers gate this on the provider's is_remote capability:
// local providers must receive the original, unredacted text.
func Redact(text string) RedactionResult {
	result := RedactionResult{Text: text, Counts: map[Label]int{}}
	for _, rule := range redactionRules {
		matches := rule.pattern.FindAllStringIndex(result.Text, -1)
		if len(matches) == 0 {
			continue
		}
		result.Text = rule.pattern.ReplaceAllString(result.Text, "[REDACTED:"+string(rule.label)+"]")
		result.Counts[rule.label] += len(matches)
		result.Redacted = true
	}
	return result
}
