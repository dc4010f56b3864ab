package engine

import (
	"github.com/cybermatrixco/nginx-python-module/interp"
	"github.com/cybermatrixco/nginx-python-module/reactor"
)

// A Task is one suspendable script execution. A task is armed lazily: the
// first Eval with in-flight work spawns the fiber goroutine; once the
// execution settles the task returns to idle and may be reused for the next
// script.
//
// The resume and yielded channels are unbuffered, so exactly one of caller
// and fiber runs at any instant. Control crosses resume on the way into the
// fiber and yielded on the way out; the interpreter state travels alongside
// via Machine.Swap in Engine.Eval.
type Task struct {
	eng  *Engine
	ns   *interp.Namespace
	code *interp.Script
	wake *reactor.Event

	pending Result       // AgainResult while a fiber is parked at a yield
	saved   interp.State // the fiber's interpreter state while parked

	resume  chan struct{}
	yielded chan struct{}

	terminating bool
}

// NewTask creates an idle task bound to a namespace. The namespace reference
// is retained for the task's lifetime; Shutdown releases it.
func (e *Engine) NewTask(ns *interp.Namespace) *Task {
	ns.Retain()
	return &Task{
		eng: e,
		ns:  ns,
	}
}

// Namespace returns the namespace the task executes in.
func (t *Task) Namespace() *interp.Namespace {
	return t.ns
}

// Terminating reports whether the task has been put into teardown. Blocking
// shims consult this before arming waits on external resources.
func (t *Task) Terminating() bool {
	return t.terminating
}

// Wakeup schedules the task's continuation event. It never resumes the task
// synchronously, and it is a no-op during teardown, where Shutdown drives
// the resumptions itself.
func (t *Task) Wakeup() {
	if t.terminating {
		return
	}
	if t.wake == nil {
		tracer().Errorf("wakeup for task without continuation event")
		return
	}
	t.eng.reactor.Post(t.wake)
}

// arm spawns the fiber goroutine for a fresh execution and parks it before
// the first statement.
func (t *Task) arm(code *interp.Script, wake *reactor.Event) {
	t.code = code
	t.wake = wake
	t.pending = Result{Kind: AgainResult}
	t.saved = interp.State{}
	t.resume = make(chan struct{})
	t.yielded = make(chan struct{})
	go t.run()
}

// run is the fiber body. It parks until the first resume, executes the
// script to completion on the engine's machine, publishes the settled
// result and hands control back one last time.
func (t *Task) run() {
	<-t.resume
	defer func() {
		if rec := recover(); rec != nil {
			tracer().Errorf("script execution panicked: %v", rec)
			t.pending = Result{Kind: EmptyResult}
			t.yielded <- struct{}{}
		}
	}()
	m := t.eng.machine
	val, err := m.Run(t.code, t.ns)
	if err != nil {
		tracer().Errorf("script error: %s", interp.CaptureError(m))
		t.pending = Result{Kind: EmptyResult}
	} else {
		t.pending = Result{Kind: ValueResult, Value: val}
	}
	t.yielded <- struct{}{}
}

// Shutdown terminates the task and drives it until the in-flight execution,
// if any, has fully unwound. Every resume after this point surfaces a
// termination error at the suspended yield, so script-level cleanup handlers
// run on the way out. The namespace reference is released at the end.
func (t *Task) Shutdown() {
	t.terminating = true
	for t.pending.Kind == AgainResult {
		t.eng.Eval(t, nil, t.wake)
	}
	if t.ns != nil {
		t.ns.Release()
		t.ns = nil
	}
}
