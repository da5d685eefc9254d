// Package heuristics classifies OCR'd text for structural signals — table
// and code shape — that feed the classify prompt before any LLM call.
package heuristics

import (
	"regexp"
	"strings"
)

// codeKeywordPattern matches lines opening with a keyword strongly
// associated with source code across the languages users are likely to
// snip (Python, JS/TS, Go, Rust, C/C++).
var codeKeywordPattern = regexp.MustCompile(`^\s*(import|def|class|function|fn|const|#include|let)\b`)

// braceDensityThreshold is the minimum fraction of non-whitespace
// characters that must be braces/brackets for the balanced-brace signal
// to fire.
const braceDensityThreshold = 0.04

// semicolonLineRateThreshold is the minimum fraction of non-empty lines
// ending in ';' for the semicolon signal to fire.
const semicolonLineRateThreshold = 0.3

// Flags are the structural signals passed into the classify prompt.
type Flags struct {
	HasTableStructure bool
	HasCodeStructure  bool
}

// Detect computes Flags from raw OCR text.
func Detect(text string) Flags {
	lines := strings.Split(text, "\n")
	return Flags{
		HasTableStructure: hasTableStructure(lines),
		HasCodeStructure:  hasCodeStructure(text, lines),
	}
}

// hasTableStructure fires when 3 or more consecutive lines share the same
// non-zero count of tab or pipe separators.
func hasTableStructure(lines []string) bool {
	run := 0
	lastCount := -1
	for _, line := range lines {
		count := strings.Count(line, "\t") + strings.Count(line, "|")
		if count > 0 && count == lastCount {
			run++
		} else {
			run = 1
		}
		lastCount = count
		if count > 0 && run >= 3 {
			return true
		}
	}
	return false
}

// hasCodeStructure fires on any one of: dense balanced braces/brackets,
// lines opening with a known code keyword, or a high rate of
// semicolon-terminated lines.
func hasCodeStructure(text string, lines []string) bool {
	if braceDensity(text) >= braceDensityThreshold {
		return true
	}

	nonEmpty := 0
	keywordLines := 0
	semicolonLines := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if codeKeywordPattern.MatchString(line) {
			keywordLines++
		}
		if strings.HasSuffix(trimmed, ";") {
			semicolonLines++
		}
	}
	if keywordLines > 0 {
		return true
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(semicolonLines)/float64(nonEmpty) > semicolonLineRateThreshold
}

// braceDensity returns the fraction of non-whitespace characters that are
// one of {}[]().
func braceDensity(text string) float64 {
	total := 0
	braces := 0
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		total++
		switch r {
		case '{', '}', '[', ']', '(', ')':
			braces++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(braces) / float64(total)
}
