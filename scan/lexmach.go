package scan

import (
	"strconv"
	"strings"
	"sync"

	script "github.com/cybermatrixco/nginx-python-module"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter for the script dialect

var keywords = []string{
	"if", "else", "while", "try", "finally", "return",
	"true", "false", "nil", "and", "or", "not",
}

var literals = []string{
	"==", "!=", "<=", ">=",
	"=", "<", ">",
	"+", "-", "*", "/", "%",
	"(", ")", "{", "}", ",", ";", ".",
}

var (
	initLexer sync.Once
	lexer     *lexmachine.Lexer
	lexerErr  error
)

// buildLexer compiles the DFA for the dialect. Keywords are added before the
// identifier pattern: on ties lexmachine prefers the pattern added first.
func buildLexer() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`#[^\n]*`), skip)
	lexer.Add([]byte(`"[^"]*"`), makeString)
	lexer.Add([]byte(`[0-9]+\.[0-9]+`), makeFloat)
	lexer.Add([]byte(`[0-9]+`), makeInt)
	for _, kw := range keywords {
		lexer.Add([]byte(kw), makeClass(Keyword))
	}
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		lexer.Add([]byte(r), makeClass(Literal))
	}
	lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeClass(Ident))
	lexer.Add([]byte(`( |\t|\r)+`), skip)
	lexer.Add([]byte(`\n`), makeClass(Newline))
	lexerErr = lexer.Compile()
	if lexerErr != nil {
		tracer().Errorf("Error compiling DFA: %v", lexerErr)
	}
}

// Scanner is a scanner type for the dialect, implementing the Tokenizer
// interface.
type Scanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
}

var _ Tokenizer = (*Scanner)(nil)

// NewScanner creates a scanner for a given input.
func NewScanner(input string) (*Scanner, error) {
	initLexer.Do(buildLexer)
	if lexerErr != nil {
		return nil, lexerErr
	}
	s, err := lexer.Scanner([]byte(input))
	if err != nil {
		return &Scanner{}, err
	}
	return &Scanner{s, logError}, nil
}

// SetErrorHandler sets an error handler for the scanner.
func (sc *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		sc.Error = logError
		return
	}
	sc.Error = h
}

// NextToken is part of the Tokenizer interface.
func (sc *Scanner) NextToken() script.Token {
	tok, err, eof := sc.scanner.Next()
	for err != nil {
		sc.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			sc.scanner.TC = ui.FailTC
		}
		tok, err, eof = sc.scanner.Next()
	}
	if eof {
		return MakeToken(EOF, "", script.Span{0, 0}, 0)
	}
	tracer().Debugf("tok is %T | %v", tok, tok)
	return tok.(Token)
}

// --- Scanner actions -------------------------------------------------------

// skip is a pre-defined action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func matchToken(typ script.TokType, m *machines.Match) Token {
	from := uint64(m.TC)
	return MakeToken(typ, string(m.Bytes), script.Span{from, from + uint64(len(m.Bytes))}, m.StartLine)
}

// makeClass is a pre-defined action which wraps a scanned match into a token
// of a given category.
func makeClass(typ script.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return matchToken(typ, m), nil
	}
}

func makeString(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	t := matchToken(String, m)
	t.Val = strings.Trim(string(m.Bytes), `"`)
	return t, nil
}

func makeInt(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	t := matchToken(Int, m)
	n, err := strconv.ParseInt(string(m.Bytes), 10, 64)
	if err != nil {
		return nil, err
	}
	t.Val = n
	return t, nil
}

func makeFloat(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	t := matchToken(Float, m)
	f, err := strconv.ParseFloat(string(m.Bytes), 64)
	if err != nil {
		return nil, err
	}
	t.Val = f
	return t, nil
}
