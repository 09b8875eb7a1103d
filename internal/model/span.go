package model

// CallSpan is one recognized call expression in a unit's text, running from
// the trigger token through the statement terminator. A span is only ever
// produced with its terminator located; truncated calls are dropped by the
// extractor instead of being yielded.
type CallSpan struct {
	Text  string // the substring fullText[Start:End]
	Line  int    // 1-based line number of the trigger token
	Start int    // byte offset of the trigger token
	End   int    // byte offset just past the terminator
}
