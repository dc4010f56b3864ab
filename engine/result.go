package engine

import (
	"fmt"

	"github.com/cybermatrixco/nginx-python-module/interp"
)

// ResultKind discriminates the four outcomes an evaluation may settle or
// suspend with.
type ResultKind int8

const (
	NoResult    ResultKind = iota // task idle, nothing in flight
	AgainResult                   // suspended at a yield, will continue
	EmptyResult                   // completed without a usable value
	ValueResult                   // completed with a value
)

func (k ResultKind) String() string {
	switch k {
	case NoResult:
		return "none"
	case AgainResult:
		return "again"
	case EmptyResult:
		return "empty"
	case ValueResult:
		return "value"
	}
	return fmt.Sprintf("ResultKind(%d)", int8(k))
}

// Result is the outcome of an Eval round. Value is meaningful only for
// kind ValueResult.
type Result struct {
	Kind  ResultKind
	Value interp.Value
}

// Settled is true for completed results, i.e. neither NoResult nor
// AgainResult.
func (r Result) Settled() bool {
	return r.Kind == EmptyResult || r.Kind == ValueResult
}

func (r Result) String() string {
	if r.Kind == ValueResult {
		return fmt.Sprintf("value(%s)", interp.FormatValue(r.Value))
	}
	return r.Kind.String()
}
