package triage

import (
	"regexp"
	"strings"
)

var (
	angleAddrPattern = regexp.MustCompile(`<(.+@.+)>`)
	bareAddrPattern  = regexp.MustCompile(`[\w\.-]+@[\w\.-]+`)
)

// ExtractSenderAddress pulls a bare email address out of a free-form
// From header. Headers with a display name use the angle-bracket form;
// bare addresses pass through; anything else is returned unchanged so
// the raw header still ends up in the audit trail.
func ExtractSenderAddress(header string) string {
	if m := angleAddrPattern.FindStringSubmatch(header); m != nil {
		return strings.TrimSpace(m[1])
	}
	if addr := bareAddrPattern.FindString(header); addr != "" {
		return addr
	}
	return strings.TrimSpace(header)
}
