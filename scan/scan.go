package scan

import (
	script "github.com/cybermatrixco/nginx-python-module"
)

// Token categories of the script dialect. Keywords and operator literals
// share the Keyword and Literal categories; parsers dispatch on the lexeme.
const (
	EOF     script.TokType = -1
	Ident   script.TokType = 1
	Int     script.TokType = 2
	Float   script.TokType = 3
	String  script.TokType = 4
	Newline script.TokType = 5
	Keyword script.TokType = 10
	Literal script.TokType = 11
)

// TokenName returns a printable name for a token category.
func TokenName(t script.TokType) string {
	switch t {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Newline:
		return "Newline"
	case Keyword:
		return "Keyword"
	case Literal:
		return "Literal"
	}
	return "Unknown"
}

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() script.Token
	SetErrorHandler(func(error))
}

// Token is an unsophisticated token type produced by the dialect scanner.
type Token struct {
	kind   script.TokType
	lexeme string
	Val    interface{}
	span   script.Span
	line   int
}

// MakeToken wraps category, lexeme and location into a Token.
func MakeToken(typ script.TokType, lexeme string, span script.Span, line int) Token {
	return Token{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
		line:   line,
	}
}

func (t Token) TokType() script.TokType {
	return t.kind
}

func (t Token) Value() interface{} {
	return t.Val
}

func (t Token) Lexeme() string {
	return t.lexeme
}

func (t Token) Span() script.Span {
	return t.span
}

func (t Token) Line() int {
	return t.line
}

// Default error reporting function for scanners.
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}
