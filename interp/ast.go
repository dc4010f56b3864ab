package interp

// The abstract syntax of the dialect. Every node records the 1-based source
// line it started on; the evaluator keeps the active frame's line current
// from these, which is what makes tracebacks accurate across suspensions.

// Stmt is a statement node.
type Stmt interface {
	stmtNode()
	Pos() int
}

// Expr is an expression node.
type Expr interface {
	exprNode()
	Pos() int
}

// AssignStmt is `name = expr`.
type AssignStmt struct {
	Line int
	Name string
	Expr Expr
}

// ExprStmt is a bare expression evaluated for its value. The value of the
// last expression statement becomes the result of the script.
type ExprStmt struct {
	Line int
	Expr Expr
}

// IfStmt is `if cond { … } else { … }`; Else may be nil.
type IfStmt struct {
	Line int
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt is `while cond { … }`.
type WhileStmt struct {
	Line int
	Cond Expr
	Body []Stmt
}

// TryStmt is `try { … } finally { … }`. The finally block runs exactly once
// on every path out of the body, including termination errors injected at a
// suspension point inside the body.
type TryStmt struct {
	Line    int
	Body    []Stmt
	Finally []Stmt
}

// ReturnStmt is `return [expr]`; Expr may be nil.
type ReturnStmt struct {
	Line int
	Expr Expr
}

func (s *AssignStmt) stmtNode() {}
func (s *ExprStmt) stmtNode()   {}
func (s *IfStmt) stmtNode()     {}
func (s *WhileStmt) stmtNode()  {}
func (s *TryStmt) stmtNode()    {}
func (s *ReturnStmt) stmtNode() {}

func (s *AssignStmt) Pos() int { return s.Line }
func (s *ExprStmt) Pos() int   { return s.Line }
func (s *IfStmt) Pos() int     { return s.Line }
func (s *WhileStmt) Pos() int  { return s.Line }
func (s *TryStmt) Pos() int    { return s.Line }
func (s *ReturnStmt) Pos() int { return s.Line }

// IntLit is an integer literal.
type IntLit struct {
	Line int
	Val  int64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Line int
	Val  float64
}

// StringLit is a string literal.
type StringLit struct {
	Line int
	Val  string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Line int
	Val  bool
}

// NilLit is `nil`.
type NilLit struct {
	Line int
}

// NameRef is a reference to a namespace binding.
type NameRef struct {
	Line int
	Name string
}

// FieldRef is dotted access `recv.name` on a table value.
type FieldRef struct {
	Line int
	Recv Expr
	Name string
}

// UnaryExpr is `not x` or `-x`.
type UnaryExpr struct {
	Line    int
	Op      string
	Operand Expr
}

// BinaryExpr covers arithmetic, comparison and the short-circuiting
// `and`/`or` operators.
type BinaryExpr struct {
	Line  int
	Op    string
	Left  Expr
	Right Expr
}

// CallExpr is a call of a builtin value.
type CallExpr struct {
	Line   int
	Callee Expr
	Args   []Expr
}

func (e *IntLit) exprNode()     {}
func (e *FloatLit) exprNode()   {}
func (e *StringLit) exprNode()  {}
func (e *BoolLit) exprNode()    {}
func (e *NilLit) exprNode()     {}
func (e *NameRef) exprNode()    {}
func (e *FieldRef) exprNode()   {}
func (e *UnaryExpr) exprNode()  {}
func (e *BinaryExpr) exprNode() {}
func (e *CallExpr) exprNode()   {}

func (e *IntLit) Pos() int     { return e.Line }
func (e *FloatLit) Pos() int   { return e.Line }
func (e *StringLit) Pos() int  { return e.Line }
func (e *BoolLit) Pos() int    { return e.Line }
func (e *NilLit) Pos() int     { return e.Line }
func (e *NameRef) Pos() int    { return e.Line }
func (e *FieldRef) Pos() int   { return e.Line }
func (e *UnaryExpr) Pos() int  { return e.Line }
func (e *BinaryExpr) Pos() int { return e.Line }
func (e *CallExpr) Pos() int   { return e.Line }
