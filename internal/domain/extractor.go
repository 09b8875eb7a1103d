// Package domain implements the call-site patch engine: span extraction,
// pattern matching, the rewrite modes and the batch workflow that drives them.
package domain

import (
	"strings"

	m "restitch.dev/pkg/restitch/internal/model"
)

// terminator closes a call span: the close delimiter immediately followed by
// the statement-end marker.
const terminator = ");"

// ExtractCalls scans text line by line and returns every call span whose
// trigger and terminator were both located, in document order. A span opens
// where a trigger name (not preceded by an identifier byte) is immediately
// followed by "(". The terminator is searched on the opening line after that
// "(" first, then line by line; no bracket depth is tracked. A span still
// open at end of input is dropped, never yielded. While a span is open its
// lines are not rescanned for triggers, and scanning resumes on the line
// after the one that closed it.
func ExtractCalls(text string, triggers []string) []m.CallSpan {
	if len(triggers) == 0 {
		return nil
	}

	var spans []m.CallSpan

	var (
		open      bool
		start     int
		startLine int
	)

	offset := 0
	line := 0

	for offset <= len(text) {
		line++

		lineEnd := strings.IndexByte(text[offset:], '\n')

		var next int

		if lineEnd < 0 {
			lineEnd = len(text)
			next = len(text) + 1
		} else {
			lineEnd += offset
			next = lineEnd + 1
		}

		if open {
			if rel := strings.Index(text[offset:lineEnd], terminator); rel >= 0 {
				end := offset + rel + len(terminator)
				spans = append(spans, m.CallSpan{
					Text:  text[start:end],
					Line:  startLine,
					Start: start,
					End:   end,
				})
				open = false
			}

			offset = next

			continue
		}

		at, nameLen := findTrigger(text[offset:lineEnd], triggers)
		if at < 0 {
			offset = next
			continue
		}

		start = offset + at
		startLine = line

		// Single-line calls close on the opening line, after the "(".
		parenEnd := start + nameLen + 1
		if rel := strings.Index(text[parenEnd:lineEnd], terminator); rel >= 0 {
			end := parenEnd + rel + len(terminator)
			spans = append(spans, m.CallSpan{
				Text:  text[start:end],
				Line:  startLine,
				Start: start,
				End:   end,
			})
		} else {
			open = true
		}

		offset = next
	}

	return spans
}

// findTrigger returns the offset and name length of the first trigger that
// opens a call on the line, or -1 when none does.
func findTrigger(line string, triggers []string) (int, int) {
	best := -1
	bestLen := 0

	for _, name := range triggers {
		if name == "" {
			continue
		}

		from := 0

		for from < len(line) {
			i := strings.Index(line[from:], name)
			if i < 0 {
				break
			}

			at := from + i
			if opensCall(line, at, len(name)) {
				if best < 0 || at < best {
					best = at
					bestLen = len(name)
				}

				break
			}

			from = at + 1
		}
	}

	return best, bestLen
}

// opensCall reports whether line[at:at+n] stands as a whole name token that
// is immediately followed by the opening call delimiter.
func opensCall(line string, at, n int) bool {
	if at > 0 && isIdentByte(line[at-1]) {
		return false
	}

	return at+n < len(line) && line[at+n] == '('
}

// isIdentByte covers the identifier alphabet of the target corpus convention,
// where "$" is a legal name character.
func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
