package interp

import (
	"fmt"
)

// ctrl signals non-linear control flow out of a statement.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
)

// Run executes a compiled script against the machine's shared execution
// state, with the given namespace as both global and local environment. The
// result is the value of a `return` statement, or of the last expression
// statement, or nil.
//
// On a script error, Run leaves the exception pending in the shared state
// and returns it; callers route it through CaptureError, which also logs
// the source location and clears the indicator.
func (m *Machine) Run(code *Script, ns *Namespace) (Value, error) {
	line := 0
	if len(code.body) > 0 {
		line = code.body[0].Pos()
	}
	if _, err := m.pushFrame(code.file, "<script>", line); err != nil {
		raised := err.(*Raised)
		raised.Trace = m.traceback()
		m.state.Exc = raised
		return nil, raised
	}
	defer m.popFrame()
	v, _, err := m.execBlock(code.body, ns)
	if err != nil {
		raised := m.asRaised(err)
		m.state.Exc = raised
		return nil, raised
	}
	return v, nil
}

// asRaised normalizes an error bubbling out of script execution into a
// pending-exception triple and makes sure it carries a traceback.
func (m *Machine) asRaised(err error) *Raised {
	raised, ok := err.(*Raised)
	if !ok {
		raised = NewRaised("RuntimeError", err.Error())
	}
	if raised.Trace == nil {
		raised.Trace = m.traceback()
	}
	return raised
}

func (m *Machine) execBlock(stmts []Stmt, ns *Namespace) (Value, ctrl, error) {
	var last Value
	for _, stmt := range stmts {
		v, c, err := m.execStmt(stmt, ns)
		if err != nil {
			return nil, ctrlNone, err
		}
		if c == ctrlReturn {
			return v, c, nil
		}
		if v != nil {
			last = v
		}
	}
	return last, ctrlNone, nil
}

func (m *Machine) execStmt(stmt Stmt, ns *Namespace) (Value, ctrl, error) {
	m.state.Frame.Line = stmt.Pos()
	switch s := stmt.(type) {
	case *AssignStmt:
		v, err := m.eval(s.Expr, ns)
		if err != nil {
			return nil, ctrlNone, err
		}
		ns.Set(s.Name, v)
		return nil, ctrlNone, nil
	case *ExprStmt:
		v, err := m.eval(s.Expr, ns)
		return v, ctrlNone, err
	case *IfStmt:
		cond, err := m.eval(s.Cond, ns)
		if err != nil {
			return nil, ctrlNone, err
		}
		if Truthy(cond) {
			return m.execBlock(s.Then, ns)
		}
		if s.Else != nil {
			return m.execBlock(s.Else, ns)
		}
		return nil, ctrlNone, nil
	case *WhileStmt:
		for {
			m.state.Frame.Line = s.Pos()
			cond, err := m.eval(s.Cond, ns)
			if err != nil {
				return nil, ctrlNone, err
			}
			if !Truthy(cond) {
				return nil, ctrlNone, nil
			}
			v, c, err := m.execBlock(s.Body, ns)
			if err != nil || c == ctrlReturn {
				return v, c, err
			}
		}
	case *TryStmt:
		return m.execTry(s, ns)
	case *ReturnStmt:
		if s.Expr == nil {
			return nil, ctrlReturn, nil
		}
		v, err := m.eval(s.Expr, ns)
		if err != nil {
			return nil, ctrlNone, err
		}
		return v, ctrlReturn, nil
	}
	return nil, ctrlNone, m.raise("RuntimeError", "unknown statement")
}

// execTry runs the body and then, on every path out of it, the finally
// block exactly once. An error from the finally block wins over a pending
// body outcome.
func (m *Machine) execTry(s *TryStmt, ns *Namespace) (Value, ctrl, error) {
	v, c, err := m.execBlock(s.Body, ns)
	if err != nil {
		// keep the body's traceback before the finally block moves the line
		err = m.asRaised(err)
	}
	_, fc, ferr := m.execBlock(s.Finally, ns)
	if ferr != nil {
		return nil, ctrlNone, ferr
	}
	if fc == ctrlReturn {
		return nil, ctrlNone, m.raise("RuntimeError", "return inside finally block")
	}
	return v, c, err
}

// raise creates a pending-exception value carrying the current traceback.
func (m *Machine) raise(kind, msg string) error {
	raised := NewRaised(kind, msg)
	raised.Trace = m.traceback()
	return raised
}

func (m *Machine) eval(expr Expr, ns *Namespace) (Value, error) {
	switch e := expr.(type) {
	case *IntLit:
		return e.Val, nil
	case *FloatLit:
		return e.Val, nil
	case *StringLit:
		return e.Val, nil
	case *BoolLit:
		return e.Val, nil
	case *NilLit:
		return nil, nil
	case *NameRef:
		v, ok := ns.Get(e.Name)
		if !ok {
			m.state.Frame.Line = e.Line
			return nil, m.raise("NameError", fmt.Sprintf("name %q is not defined", e.Name))
		}
		return v, nil
	case *FieldRef:
		return m.evalField(e, ns)
	case *UnaryExpr:
		return m.evalUnary(e, ns)
	case *BinaryExpr:
		return m.evalBinary(e, ns)
	case *CallExpr:
		return m.evalCall(e, ns)
	}
	return nil, m.raise("RuntimeError", "unknown expression")
}

func (m *Machine) evalField(e *FieldRef, ns *Namespace) (Value, error) {
	recv, err := m.eval(e.Recv, ns)
	if err != nil {
		return nil, err
	}
	table, ok := recv.(*Table)
	if !ok {
		m.state.Frame.Line = e.Line
		return nil, m.raise("TypeError", fmt.Sprintf("%s value has no fields", TypeName(recv)))
	}
	v, ok := table.Field(e.Name)
	if !ok {
		m.state.Frame.Line = e.Line
		return nil, m.raise("NameError", fmt.Sprintf("table %q has no field %q", table.Name, e.Name))
	}
	return v, nil
}

func (m *Machine) evalUnary(e *UnaryExpr, ns *Namespace) (Value, error) {
	operand, err := m.eval(e.Operand, ns)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "not":
		return !Truthy(operand), nil
	case "-":
		switch x := operand.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
	}
	m.state.Frame.Line = e.Line
	return nil, m.raise("TypeError", fmt.Sprintf("bad operand type for unary %s: %s", e.Op, TypeName(operand)))
}

func (m *Machine) evalBinary(e *BinaryExpr, ns *Namespace) (Value, error) {
	left, err := m.eval(e.Left, ns)
	if err != nil {
		return nil, err
	}
	// and/or short-circuit and yield an operand value
	switch e.Op {
	case "and":
		if !Truthy(left) {
			return left, nil
		}
		return m.eval(e.Right, ns)
	case "or":
		if Truthy(left) {
			return left, nil
		}
		return m.eval(e.Right, ns)
	}
	right, err := m.eval(e.Right, ns)
	if err != nil {
		return nil, err
	}
	m.state.Frame.Line = e.Line
	return m.applyBinary(e.Op, left, right)
}

func (m *Machine) applyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return valueEq(left, right), nil
	case "!=":
		return !valueEq(left, right), nil
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return applyStringOp(m, op, ls, rs)
		}
	}
	li, lIsInt := left.(int64)
	ri, rIsInt := right.(int64)
	if lIsInt && rIsInt {
		return applyIntOp(m, op, li, ri)
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return applyFloatOp(m, op, lf, rf)
	}
	return nil, m.raise("TypeError",
		fmt.Sprintf("unsupported operand types for %s: %s and %s", op, TypeName(left), TypeName(right)))
}

func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func valueEq(a, b Value) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func applyStringOp(m *Machine, op string, a, b string) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return nil, m.raise("TypeError", fmt.Sprintf("unsupported operand type string for %s", op))
}

func applyIntOp(m *Machine, op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, m.raise("ZeroDivisionError", "division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return nil, m.raise("ZeroDivisionError", "modulo by zero")
		}
		return a % b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return nil, m.raise("RuntimeError", "unknown operator "+op)
}

func applyFloatOp(m *Machine, op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, m.raise("ZeroDivisionError", "float division by zero")
		}
		return a / b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return nil, m.raise("RuntimeError", "unknown operator "+op)
}

func (m *Machine) evalCall(e *CallExpr, ns *Namespace) (Value, error) {
	callee, err := m.eval(e.Callee, ns)
	if err != nil {
		return nil, err
	}
	builtin, ok := callee.(*Builtin)
	if !ok {
		m.state.Frame.Line = e.Line
		return nil, m.raise("TypeError", fmt.Sprintf("%s value is not callable", TypeName(callee)))
	}
	args := make([]Value, len(e.Args))
	for i, argExpr := range e.Args {
		arg, err := m.eval(argExpr, ns)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	m.state.Frame.Line = e.Line
	if _, err := m.pushFrame(m.state.Frame.File, builtin.Name, e.Line); err != nil {
		return nil, m.asRaised(err)
	}
	v, err := builtin.Fn(m, args)
	m.popFrame()
	if err != nil {
		m.state.Frame.Line = e.Line
		return nil, m.asRaised(err)
	}
	return v, nil
}
