// Package jsonstream extracts an early preview from a partial JSON
// document as it streams in, without waiting for the document to close.
package jsonstream

import (
	"strings"
)

// SkeletonEvent is the preview emitted once both the content_type and
// summary fields are parsable from a prefix of the buffer.
type SkeletonEvent struct {
	ContentType string
	Summary     string
}

// Extractor scans a growing buffer for a skeleton and guarantees it is
// emitted at most once per stream.
type Extractor struct {
	buf       strings.Builder
	delivered bool
}

// New returns an Extractor ready to accept chunks.
func New() *Extractor {
	return &Extractor{}
}

// Feed appends a chunk to the buffer and attempts a forgiving prefix
// parse. It returns the skeleton and true the first time both fields
// become parsable; afterward it always returns false.
func (e *Extractor) Feed(chunk string) (SkeletonEvent, bool) {
	e.buf.WriteString(chunk)
	if e.delivered {
		return SkeletonEvent{}, false
	}

	skel, ok := scanSkeleton(e.buf.String())
	if !ok {
		return SkeletonEvent{}, false
	}
	e.delivered = true
	return skel, true
}

// Delivered reports whether a skeleton has already been emitted.
func (e *Extractor) Delivered() bool {
	return e.delivered
}

// String returns the full buffer accumulated so far.
func (e *Extractor) String() string {
	return e.buf.String()
}

// scanSkeleton is a character-by-character scanner that tracks brace
// depth and, on encountering the key "summary" or "content_type" at
// depth 1, attempts to consume a JSON string value. It never fails on a
// truncated document: it simply returns ok=false until both values have
// been captured.
func scanSkeleton(s string) (SkeletonEvent, bool) {
	var (
		depth       int
		inString    bool
		escaped     bool
		contentType string
		summary     string
		haveCT      bool
		haveSummary bool
	)

	i := 0
	n := len(s)
	for i < n {
		c := s[i]

		if inString {
			if escaped {
				escaped = false
				i++
				continue
			}
			if c == '\\' {
				escaped = true
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			i++
			continue
		}

		switch c {
		case '"':
			inString = true
			if depth == 1 {
				key, rest, ok := readKeyAndValue(s, i)
				if ok && (key == "content_type" || key == "summary") {
					if value, vok := rest.(string); vok {
						if key == "content_type" {
							contentType = value
							haveCT = true
						} else {
							summary = value
							haveSummary = true
						}
					}
				}
			}
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}

	if haveCT && haveSummary {
		return SkeletonEvent{ContentType: contentType, Summary: summary}, true
	}
	return SkeletonEvent{}, false
}

// readKeyAndValue is called with i pointing at the opening quote of a
// candidate key. It reads the quoted key, then (if followed by a colon
// and a quoted string value that is fully present in the buffer) returns
// the key and the decoded string value. ok is false if the key or value
// is incomplete in the current buffer.
func readKeyAndValue(s string, i int) (string, any, bool) {
	key, end, ok := readString(s, i)
	if !ok {
		return "", nil, false
	}

	j := end
	for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		j++
	}
	if j >= len(s) || s[j] != ':' {
		return "", nil, false
	}
	j++
	for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		j++
	}
	if j >= len(s) || s[j] != '"' {
		return key, nil, false
	}

	value, _, ok := readString(s, j)
	if !ok {
		return key, nil, false
	}
	return key, value, true
}

// readString reads a JSON string starting at the opening quote index i.
// It returns the decoded value, the index just past the closing quote,
// and whether the string was fully closed within s.
func readString(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '"' {
		return "", i, false
	}
	var b strings.Builder
	j := i + 1
	for j < len(s) {
		c := s[j]
		if c == '\\' {
			if j+1 >= len(s) {
				return "", i, false
			}
			b.WriteByte(unescape(s[j+1]))
			j += 2
			continue
		}
		if c == '"' {
			return b.String(), j + 1, true
		}
		b.WriteByte(c)
		j++
	}
	return "", i, false
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}
