package interp

import (
	"fmt"
)

// A Frame is one active call record: the executing unit, the line currently
// being executed, and a link to the calling frame.
type Frame struct {
	File   string // source file (or origin label) of the executing unit
	Fn     string // "<script>" for script bodies, the name for builtins
	Line   int    // line currently being executed
	Parent *Frame
}

// TraceEntry is one source location of a traceback, innermost last.
type TraceEntry struct {
	File string
	Line int
}

// Raised is a pending-exception triple: exception kind, message, and the
// traceback collected at the raise site.
type Raised struct {
	Kind  string
	Msg   string
	Trace []TraceEntry
}

// NewRaised creates an exception value without a traceback; the evaluator
// attaches one when the exception passes a statement boundary.
func NewRaised(kind, msg string) *Raised {
	return &Raised{Kind: kind, Msg: msg}
}

func (r *Raised) Error() string {
	return r.Kind + ": " + r.Msg
}

// State is the snapshot of the shared execution state: call-depth counter,
// active frame, pending exception. It is treated as an opaque value with
// swap semantics; callers never poke at a State they have swapped out.
type State struct {
	Depth int
	Frame *Frame
	Exc   *Raised
}

// Machine owns one shared execution state. Exactly one script runs on a
// machine at any instant; an engine multiplexes the machine across tasks by
// swapping its state around every stack switch.
type Machine struct {
	state    State
	maxDepth int
}

// frameCost is the stack budget charged per call frame when deriving the
// recursion limit from the configured per-task stack size.
const frameCost = 64

// NewMachine creates a machine whose recursion limit is derived from the
// given per-task stack size in bytes.
func NewMachine(stackSize int) *Machine {
	depth := stackSize / frameCost
	if depth < 16 {
		depth = 16
	}
	return &Machine{maxDepth: depth}
}

// Swap exchanges the shared execution state with s and returns the previous
// state. The engine calls this around every stack switch, so that each task
// finds exactly the state it left behind.
func (m *Machine) Swap(s State) State {
	old := m.state
	m.state = s
	return old
}

// Pending returns the pending exception, or nil.
func (m *Machine) Pending() *Raised {
	return m.state.Exc
}

// SetPending installs a pending exception.
func (m *Machine) SetPending(r *Raised) {
	m.state.Exc = r
}

// Depth returns the current call depth.
func (m *Machine) Depth() int {
	return m.state.Depth
}

// Frame returns the active call frame, or nil when the machine is idle.
func (m *Machine) Frame() *Frame {
	return m.state.Frame
}

func (m *Machine) pushFrame(file, fn string, line int) (*Frame, error) {
	if m.state.Depth >= m.maxDepth {
		return nil, NewRaised("RecursionError", "recursion depth exceeded")
	}
	f := &Frame{File: file, Fn: fn, Line: line, Parent: m.state.Frame}
	m.state.Frame = f
	m.state.Depth++
	return f, nil
}

func (m *Machine) popFrame() {
	if m.state.Frame == nil {
		panic("attempt to pop call frame from empty stack")
	}
	m.state.Frame = m.state.Frame.Parent
	m.state.Depth--
}

// traceback collects the source locations of the active frame chain,
// outermost first.
func (m *Machine) traceback() []TraceEntry {
	var frames []*Frame
	for f := m.state.Frame; f != nil; f = f.Parent {
		frames = append(frames, f)
	}
	trace := make([]TraceEntry, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		trace = append(trace, TraceEntry{File: frames[i].File, Line: frames[i].Line})
	}
	return trace
}

// CaptureError fetches the machine's pending exception, renders its message,
// recovers file and line from the innermost traceback frame, and formats
// "<message> [<file>:<line>]". It always clears the pending-exception
// indicator, so that a failure cannot leak into unrelated executions, and it
// never fails: missing pieces degrade to an empty message, empty file and
// line 0. With no pending exception the machine state is left untouched.
func CaptureError(m *Machine) string {
	text, file := "", ""
	line := 0
	if exc := m.state.Exc; exc != nil {
		text = exc.Msg
		if n := len(exc.Trace); n > 0 {
			file = exc.Trace[n-1].File
			line = exc.Trace[n-1].Line
		}
		m.state.Exc = nil
	}
	return fmt.Sprintf("%s [%s:%d]", text, file, line)
}
