// Package pkg is a package that provides utilities for restitch.
package pkg

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) into a text buffer.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// validIn reports whether the span lies within a text of length n.
func (s Span) validIn(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Edit pairs a span with the text that replaces it.
type Edit struct {
	Span Span
	Text string
}

// Splice returns text with the span replaced by repl. The input string is
// never modified; a new string is returned.
func Splice(text string, span Span, repl string) (string, error) {
	if !span.validIn(len(text)) {
		return "", fmt.Errorf("span [%d,%d) out of range for text of %d bytes", span.Start, span.End, len(text))
	}

	var b strings.Builder

	b.Grow(len(text) - span.Len() + len(repl))
	b.WriteString(text[:span.Start])
	b.WriteString(repl)
	b.WriteString(text[span.End:])

	return b.String(), nil
}

// ApplyEdits applies every edit to text in a single pass and returns the
// result. Edits may be given in any order but must not overlap; overlapping
// or out-of-range edits return an error and leave the text unchanged.
func ApplyEdits(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Span.Start < ordered[j].Span.Start
	})

	for i, edit := range ordered {
		if !edit.Span.validIn(len(text)) {
			return "", fmt.Errorf("edit %d: span [%d,%d) out of range for text of %d bytes",
				i, edit.Span.Start, edit.Span.End, len(text))
		}

		if i > 0 && edit.Span.Start < ordered[i-1].Span.End {
			return "", fmt.Errorf("edit %d: span [%d,%d) overlaps previous edit ending at %d",
				i, edit.Span.Start, edit.Span.End, ordered[i-1].Span.End)
		}
	}

	// Apply from the back so earlier offsets stay valid.
	result := text

	for i := len(ordered) - 1; i >= 0; i-- {
		spliced, err := Splice(result, ordered[i].Span, ordered[i].Text)
		if err != nil {
			return "", err
		}

		result = spliced
	}

	return result, nil
}

// LineOf returns the 1-based line number of the byte offset. Offsets past the
// end of the text are treated as belonging to the last line.
func LineOf(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}

	if offset > len(text) {
		offset = len(text)
	}

	return strings.Count(text[:offset], "\n") + 1
}

// IndentAt returns the leading whitespace (spaces and tabs) of the line
// containing the byte offset.
func IndentAt(text string, offset int) string {
	if offset < 0 {
		offset = 0
	}

	if offset > len(text) {
		offset = len(text)
	}

	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	end := lineStart
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}

	return text[lineStart:end]
}
