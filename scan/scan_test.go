package scan

import (
	"testing"

	script "github.com/cybermatrixco/nginx-python-module"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputStrings = []string{
	"1",
	"1+12",
	`x = "mystring" # commented`,
	"sleep(500)",
	"a == b",
}

var tokenCounts = []int{1, 3, 3, 4, 3}

func TestScanInputs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.scan")
	defer teardown()
	//
	for i, input := range inputStrings {
		sc, err := NewScanner(input)
		if err != nil {
			t.Error(err)
		}
		count := 0
		token := sc.NextToken()
		for token.TokType() != EOF {
			t.Logf(" %8s | %10q | @%d", TokenName(token.TokType()), token.Lexeme(), token.Span().From())
			count++
			token = sc.NextToken()
		}
		if count != tokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
}

func TestScanKeywordNotIdent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.scan")
	defer teardown()
	//
	sc, err := NewScanner("finally finale")
	if err != nil {
		t.Fatal(err)
	}
	tok := sc.NextToken()
	if tok.TokType() != Keyword || tok.Lexeme() != "finally" {
		t.Errorf("expected keyword 'finally', got %s %q", TokenName(tok.TokType()), tok.Lexeme())
	}
	tok = sc.NextToken()
	if tok.TokType() != Ident || tok.Lexeme() != "finale" {
		t.Errorf("expected identifier 'finale', got %s %q", TokenName(tok.TokType()), tok.Lexeme())
	}
}

func TestScanValuesAndLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.scan")
	defer teardown()
	//
	sc, err := NewScanner("1.5\n\"hi\"\n42")
	if err != nil {
		t.Fatal(err)
	}
	tok := sc.NextToken()
	if tok.Value() != 1.5 || tok.Line() != 1 {
		t.Errorf("expected float 1.5 on line 1, got %v on line %d", tok.Value(), tok.Line())
	}
	if tok := sc.NextToken(); tok.TokType() != Newline {
		t.Errorf("expected newline token, got %s", TokenName(tok.TokType()))
	}
	tok = sc.NextToken()
	if tok.Value() != "hi" || tok.Line() != 2 {
		t.Errorf("expected string \"hi\" on line 2, got %v on line %d", tok.Value(), tok.Line())
	}
	sc.NextToken() // newline
	tok = sc.NextToken()
	if tok.Value() != int64(42) || tok.Line() != 3 {
		t.Errorf("expected int 42 on line 3, got %v on line %d", tok.Value(), tok.Line())
	}
	if tok := sc.NextToken(); tok.TokType() != EOF {
		t.Errorf("expected EOF, got %s", TokenName(tok.TokType()))
	}
	var span script.Span
	if !span.IsNull() {
		t.Error("zero span should be null")
	}
}
