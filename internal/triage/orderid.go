package triage

import (
	"regexp"
	"strings"
)

// Fallback patterns for pulling an order id out of an email body when
// the model extraction fails. Tried in order, first match wins. The
// bare-token pattern stays case sensitive so ordinary words do not
// match.
var orderIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*#?\s*([a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)order\s*id\s*:?\s*([a-zA-Z0-9]+)`),
	regexp.MustCompile(`#([a-zA-Z0-9]+)`),
	regexp.MustCompile(`\b([A-Z0-9]{6,})\b`),
}

func extractOrderIDFallback(body string) string {
	for _, pattern := range orderIDPatterns {
		if m := pattern.FindStringSubmatch(body); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}
