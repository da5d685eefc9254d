package safety

import (
	"regexp"
	"strings"
)

// blocklistPatterns matches shell fragments considered too dangerous to run
// unattended. The set intentionally errs toward false positives: a refused
// command still surfaces its literal text to the user, nothing is hidden.
var blocklistPatterns = []*regexp.Regexp{
	// Recursive delete rooted at / or the home directory.
	regexp.MustCompile(`\brm\s+(-[A-Za-z]*r[A-Za-z]*f[A-Za-z]*|-[A-Za-z]*f[A-Za-z]*r[A-Za-z]*)\s+(/|~)(\s|$|/)`),
	regexp.MustCompile(`\brm\s+.*--no-preserve-root`),
	// Filesystem formatting / raw device writes.
	regexp.MustCompile(`\bmkfs(\.[A-Za-z0-9]+)?\b`),
	regexp.MustCompile(`\bdd\s+.*\bof=/dev/(sd|hd|nvme|disk)`),
	// Fork bombs.
	regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;?\s*:`),
	// World-writable permission on root or home.
	regexp.MustCompile(`\bchmod\s+(-R\s+)?777\s+(/|~)(\s|$|/)`),
	// Remote script execution piped straight into a shell.
	regexp.MustCompile(`\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(sh|bash|zsh)\b`),
	// Power state changes.
	regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`),
	// Credential mutation.
	regexp.MustCompile(`\bpasswd\b`),
	regexp.MustCompile(`\bsudo\s+su\b`),
	// Arbitrary code evaluation.
	regexp.MustCompile(`\beval\s*\(`),
	// Windows account and registry mutation.
	regexp.MustCompile(`(?i)\bnet\s+user\b`),
	regexp.MustCompile(`(?i)\breg\s+(add|delete)\b`),
}

// CheckResult reports whether a command is safe to run and, if not, which
// pattern it tripped.
type CheckResult struct {
	Safe   bool
	Reason string
}

// Check matches command against the blocklist. A single human-readable
// reason is returned for the first pattern that matches; the orchestrator
// surfaces that reason directly to the user and never spawns a shell for
// any command this returns Safe=false for.
func Check(command string) CheckResult {
	normalized := strings.TrimSpace(command)
	for _, pattern := range blocklistPatterns {
		if pattern.MatchString(normalized) {
			return CheckResult{Safe: false, Reason: "matched blocklist pattern: " + pattern.String()}
		}
	}
	return CheckResult{Safe: true}
}
