package interp

import (
	"fmt"

	script "github.com/cybermatrixco/nginx-python-module"
	"github.com/cybermatrixco/nginx-python-module/scan"
)

// A hand-written recursive-descent parser. The dialect is LL(2): the only
// place needing two tokens of lookahead is distinguishing an assignment
// from an expression statement.

type parser struct {
	toks   []script.Token
	pos    int
	origin string
}

func parse(src, origin string) ([]Stmt, error) {
	sc, err := scan.NewScanner(src)
	if err != nil {
		return nil, &CompileError{Msg: err.Error(), Origin: origin}
	}
	var scanErr error
	sc.SetErrorHandler(func(e error) {
		if scanErr == nil {
			scanErr = e
		}
	})
	var toks []script.Token
	for {
		tok := sc.NextToken()
		toks = append(toks, tok)
		if tok.TokType() == scan.EOF {
			break
		}
	}
	if scanErr != nil {
		return nil, &CompileError{Msg: scanErr.Error(), Origin: origin}
	}
	p := &parser{toks: toks, origin: origin}
	body, err := p.stmtList("")
	if err != nil {
		return nil, err
	}
	return body, nil
}

// --- Token plumbing --------------------------------------------------------

func (p *parser) cur() script.Token {
	return p.toks[p.pos]
}

func (p *parser) peek() script.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() script.Token {
	tok := p.toks[p.pos]
	if p.pos+1 < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool {
	return p.cur().TokType() == scan.EOF
}

// at tests the current token for a category, and for keywords and literals
// additionally for the lexeme.
func (p *parser) at(typ script.TokType, lexeme string) bool {
	tok := p.cur()
	if tok.TokType() != typ {
		return false
	}
	return lexeme == "" || tok.Lexeme() == lexeme
}

func (p *parser) isSep() bool {
	return p.at(scan.Newline, "") || p.at(scan.Literal, ";")
}

func (p *parser) skipSeps() {
	for p.isSep() {
		p.advance()
	}
}

func (p *parser) expect(typ script.TokType, lexeme string) (script.Token, error) {
	if !p.at(typ, lexeme) {
		return nil, p.errorf("expected %q, found %q", lexeme, p.cur().Lexeme())
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line := p.cur().Line()
	msg := fmt.Sprintf(format, args...)
	return &CompileError{
		Msg:    fmt.Sprintf("line %d: %s", line, msg),
		Origin: p.origin,
	}
}

// --- Statements ------------------------------------------------------------

// stmtList parses statements up to a terminator: "}" inside blocks, or end
// of input at the top level.
func (p *parser) stmtList(terminator string) ([]Stmt, error) {
	var list []Stmt
	p.skipSeps()
	for {
		if terminator != "" && p.at(scan.Literal, terminator) {
			return list, nil
		}
		if p.atEOF() {
			if terminator != "" {
				return nil, p.errorf("unexpected end of input, expected %q", terminator)
			}
			return list, nil
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		list = append(list, stmt)
		if p.isSep() {
			p.skipSeps()
			continue
		}
		if p.atEOF() || (terminator != "" && p.at(scan.Literal, terminator)) {
			continue
		}
		return nil, p.errorf("unexpected token %q after statement", p.cur().Lexeme())
	}
}

func (p *parser) block() ([]Stmt, error) {
	if _, err := p.expect(scan.Literal, "{"); err != nil {
		return nil, err
	}
	body, err := p.stmtList("}")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(scan.Literal, "}"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) statement() (Stmt, error) {
	tok := p.cur()
	if tok.TokType() == scan.Keyword {
		switch tok.Lexeme() {
		case "if":
			return p.ifStmt()
		case "while":
			return p.whileStmt()
		case "try":
			return p.tryStmt()
		case "return":
			return p.returnStmt()
		}
	}
	if tok.TokType() == scan.Ident && p.peek().TokType() == scan.Literal && p.peek().Lexeme() == "=" {
		p.advance() // name
		p.advance() // =
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Line: tok.Line(), Name: tok.Lexeme(), Expr: expr}, nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Line: tok.Line(), Expr: expr}, nil
}

func (p *parser) ifStmt() (Stmt, error) {
	tok := p.advance() // if
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Line: tok.Line(), Cond: cond, Then: then}
	p.skipSeps()
	if p.at(scan.Keyword, "else") {
		p.advance()
		if p.at(scan.Keyword, "if") {
			nested, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			stmt.Else = []Stmt{nested}
		} else {
			stmt.Else, err = p.block()
			if err != nil {
				return nil, err
			}
		}
	}
	return stmt, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	tok := p.advance() // while
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Line: tok.Line(), Cond: cond, Body: body}, nil
}

func (p *parser) tryStmt() (Stmt, error) {
	tok := p.advance() // try
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	p.skipSeps()
	if _, err := p.expect(scan.Keyword, "finally"); err != nil {
		return nil, err
	}
	final, err := p.block()
	if err != nil {
		return nil, err
	}
	return &TryStmt{Line: tok.Line(), Body: body, Finally: final}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	tok := p.advance() // return
	stmt := &ReturnStmt{Line: tok.Line()}
	if p.isSep() || p.atEOF() || p.at(scan.Literal, "}") {
		return stmt, nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	stmt.Expr = expr
	return stmt, nil
}

// --- Expressions ------------------------------------------------------------

func (p *parser) expression() (Expr, error) {
	return p.orExpr()
}

func (p *parser) orExpr() (Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.at(scan.Keyword, "or") {
		tok := p.advance()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: tok.Line(), Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) andExpr() (Expr, error) {
	left, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.at(scan.Keyword, "and") {
		tok := p.advance()
		right, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: tok.Line(), Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) notExpr() (Expr, error) {
	if p.at(scan.Keyword, "not") {
		tok := p.advance()
		operand, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: tok.Line(), Op: "not", Operand: operand}, nil
	}
	return p.comparison()
}

var cmpOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *parser) comparison() (Expr, error) {
	left, err := p.arith()
	if err != nil {
		return nil, err
	}
	if p.cur().TokType() == scan.Literal && cmpOps[p.cur().Lexeme()] {
		tok := p.advance()
		right, err := p.arith()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Line: tok.Line(), Op: tok.Lexeme(), Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) arith() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.at(scan.Literal, "+") || p.at(scan.Literal, "-") {
		tok := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: tok.Line(), Op: tok.Lexeme(), Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) term() (Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.at(scan.Literal, "*") || p.at(scan.Literal, "/") || p.at(scan.Literal, "%") {
		tok := p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: tok.Line(), Op: tok.Lexeme(), Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) factor() (Expr, error) {
	if p.at(scan.Literal, "-") {
		tok := p.advance()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: tok.Line(), Op: "-", Operand: operand}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(scan.Literal, "."):
			p.advance()
			name, err := p.expect(scan.Ident, "")
			if err != nil {
				return nil, p.errorf("expected field name after '.'")
			}
			expr = &FieldRef{Line: name.Line(), Recv: expr, Name: name.Lexeme()}
		case p.at(scan.Literal, "("):
			tok := p.advance()
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Line: tok.Line(), Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

// argList parses call arguments up to the closing paren. Newlines are
// allowed inside an argument list.
func (p *parser) argList() ([]Expr, error) {
	var args []Expr
	p.skipSeps()
	if p.at(scan.Literal, ")") {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSeps()
		if p.at(scan.Literal, ",") {
			p.advance()
			p.skipSeps()
			continue
		}
		if _, err := p.expect(scan.Literal, ")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) primary() (Expr, error) {
	tok := p.cur()
	switch tok.TokType() {
	case scan.Int:
		p.advance()
		return &IntLit{Line: tok.Line(), Val: tok.Value().(int64)}, nil
	case scan.Float:
		p.advance()
		return &FloatLit{Line: tok.Line(), Val: tok.Value().(float64)}, nil
	case scan.String:
		p.advance()
		return &StringLit{Line: tok.Line(), Val: tok.Value().(string)}, nil
	case scan.Ident:
		p.advance()
		return &NameRef{Line: tok.Line(), Name: tok.Lexeme()}, nil
	case scan.Keyword:
		switch tok.Lexeme() {
		case "true", "false":
			p.advance()
			return &BoolLit{Line: tok.Line(), Val: tok.Lexeme() == "true"}, nil
		case "nil":
			p.advance()
			return &NilLit{Line: tok.Line()}, nil
		}
	case scan.Literal:
		if tok.Lexeme() == "(" {
			p.advance()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(scan.Literal, ")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
	}
	return nil, p.errorf("unexpected token %q", tok.Lexeme())
}
