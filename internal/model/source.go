package model

// Path represents a file system path.
type Path string

// SourceUnit is one logical unit of a batch: the unit key from the plan, the
// file path resolved for that key, and the file's full text. The text is
// replaced as a whole when a rewrite applies, never mutated in place, so the
// before/after comparison stays possible.
type SourceUnit struct {
	Key  string
	Path Path
	Text string
}
