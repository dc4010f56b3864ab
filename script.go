package script

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. The base package only reserves the
// negative range; package scan defines the concrete categories of the script
// dialect.
type TokType int

// TokTypeStringer is a type to be provided by a scanner to be able to print
// out token categories.
type TokTypeStringer func(TokType) string

// Tokens represent input tokens, produced by a scanner over script source
// text.
//
// An example would be a token for a floating point number:
//
//	TokType = Float       // identifier for this kind of tokens
//	Lexeme  = "3.1416"    // lexeme as it appeared in the input stream
//	Value   = 3.1416      // is a float64 value
//	Span    = 67…73       // occurred from position 67 in the input stream
//	Line    = 4           // input line the lexeme started on
//
// Line information is carried on every token: the interpreter needs it to
// produce tracebacks with accurate source locations.
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
	Line() int
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a length of input token run. A span
// denotes a start position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

func (s Span) IsNull() bool {
	return s == Span{}
}

func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
