package model

// PhaseRange labels a closed interval of 1-based line numbers. The configured
// table of ranges is ordered; resolution takes the first range containing a
// line, so overlapping ranges are allowed and resolve deterministically.
type PhaseRange struct {
	Start int
	End   int
	Label string
}
