package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the universal type for script values. Concrete kinds are nil,
// bool, int64, float64, string, List, *Table and *Builtin. Host packages
// may store opaque values of their own; the interpreter passes them through
// untouched.
type Value interface{}

// List is an ordered collection value, as returned e.g. by the resolver
// shim. The dialect has no list literals; lists enter scripts through
// builtins only.
type List []Value

// Builtin is a host function callable from scripts.
type Builtin struct {
	Name string
	Fn   func(m *Machine, args []Value) (Value, error)
}

func (b *Builtin) String() string {
	return "<builtin " + b.Name + ">"
}

// Table is a read-only record value with named fields, used for constant
// vocabularies like the status-code table bound into every namespace.
type Table struct {
	Name   string
	Fields map[string]Value
}

// NewTable creates a table value.
func NewTable(name string, fields map[string]Value) *Table {
	return &Table{Name: name, Fields: fields}
}

// Field looks up a field of the table.
func (t *Table) Field(name string) (Value, bool) {
	v, ok := t.Fields[name]
	return v, ok
}

func (t *Table) String() string {
	return "<table " + t.Name + ">"
}

// Truthy reports the truth value of v. Nil, false, numeric zero and the
// empty string are falsy, everything else is true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

// TypeName returns a printable name for the kind of v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case List:
		return "list"
	case *Table:
		return "table"
	case *Builtin:
		return "builtin"
	}
	return fmt.Sprintf("%T", v)
}

// FormatValue renders a value for diagnostics and REPL output.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case List:
		items := make([]string, len(x))
		for i, it := range x {
			items[i] = FormatValue(it)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}
