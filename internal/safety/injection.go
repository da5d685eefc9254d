package safety

import "regexp"

// injectionPatterns catch the common phrasing of a prompt-injection attempt
// embedded in OCR'd or pasted text. A match never blocks the pipeline; it
// only annotates the resulting action menu so the user sees that the source
// text tried to steer the model.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?(previous|prior|above) instructions`),
	regexp.MustCompile(`(?i)disregard (all )?(previous|prior|above) (instructions|prompts?)`),
	regexp.MustCompile(`(?i)you are now`),
	regexp.MustCompile(`(?i)reveal (your|the) system prompt`),
	regexp.MustCompile(`(?i)output your (system|initial) prompt`),
	regexp.MustCompile(`(?i)new instructions?:`),
}

// LooksInjected reports whether text contains a recognisable prompt-injection
// phrase. It is advisory only: callers annotate the action menu, they do not
// refuse classification on a hit.
func LooksInjected(text string) bool {
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
