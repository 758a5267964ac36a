// Package source holds the source-position types shared by the symbol,
// visibility and driver layers.
package source

import "fmt"

// Span locates a construct in a source file. Line and Column are 1-based; a
// zero Line means the position is unknown.
type Span struct {
	File   string
	Line   int
	Column int
	Offset int
	Length int
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	switch {
	case s.File == "" && s.Line == 0:
		return "<unknown>"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}
