package dispatch

import "regexp"

var fencedBlockPattern = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*\\n(.*?)```")

// firstFencedBlock returns the content of the first markdown fenced code
// block in body, if any.
func firstFencedBlock(body string) (string, bool) {
	match := fencedBlockPattern.FindStringSubmatch(body)
	if match == nil {
		return "", false
	}
	return match[1], true
}
