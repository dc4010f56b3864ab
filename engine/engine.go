package engine

import (
	"errors"
	"time"

	"github.com/cybermatrixco/nginx-python-module/interp"
	"github.com/cybermatrixco/nginx-python-module/reactor"
)

// DefaultStackSize is the per-task stack budget applied when no explicit
// size is configured.
const DefaultStackSize = 32 * 1024

// DefaultResolveTimeout bounds name resolution started by scripts.
const DefaultResolveTimeout = 30 * time.Second

// ErrBlocked is surfaced by Yield when no task is active, i.e. when a
// blocking shim runs under synchronous evaluation.
var ErrBlocked = errors.New("blocking calls are not allowed")

// ErrTerminated is surfaced at the suspended yield when a task is resumed
// during teardown.
var ErrTerminated = errors.New("terminated")

// Engine drives suspendable script executions over a reactor. All engine
// methods must be called from the reactor's loop goroutine (or, before the
// loop starts, from the goroutine that will run it); the engine itself does
// no locking.
type Engine struct {
	reactor        *reactor.Reactor
	machine        *interp.Machine
	active         *Task // task currently executing on the machine, nil outside Eval
	stackSize      int
	resolveTimeout time.Duration
}

// Option configures an engine at construction time.
type Option func(*Engine)

// WithStackSize sets the per-task stack budget in bytes.
func WithStackSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.stackSize = size
		}
	}
}

// WithResolveTimeout bounds script-initiated name resolution.
func WithResolveTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.resolveTimeout = d
		}
	}
}

// New creates an engine on top of r.
func New(r *reactor.Reactor, opts ...Option) *Engine {
	e := &Engine{
		reactor:        r,
		stackSize:      DefaultStackSize,
		resolveTimeout: DefaultResolveTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.machine = interp.NewMachine(e.stackSize)
	return e
}

// Reactor returns the reactor the engine schedules on.
func (e *Engine) Reactor() *reactor.Reactor {
	return e.reactor
}

// Machine returns the engine's interpreter machine.
func (e *Engine) Machine() *interp.Machine {
	return e.machine
}

// Active returns the task currently executing on the machine, or nil.
// Blocking shims use it to find the task to suspend.
func (e *Engine) Active() *Task {
	return e.active
}

// ResolveTimeout returns the bound applied to script-initiated name
// resolution.
func (e *Engine) ResolveTimeout() time.Duration {
	return e.resolveTimeout
}

// Eval advances a task by one execution round.
//
// With a nil wake event the evaluation is synchronous: the script runs to
// completion on the caller's interpreter state, with no active task
// installed, so any attempt to yield fails with ErrBlocked. Synchronous
// evaluation never returns AgainResult.
//
// With a wake event, Eval arms the task's fiber on the first round of a
// fresh execution and resumes it on every later round; code is ignored on
// resumption rounds. The fiber runs until it either settles or parks at a
// yield. AgainResult means a continuation has been armed and the wake event
// will be posted once the awaited condition holds.
func (e *Engine) Eval(t *Task, code *interp.Script, wake *reactor.Event) Result {
	if wake == nil {
		return e.evalSync(t, code)
	}
	if t.pending.Kind == NoResult {
		if code == nil {
			tracer().Errorf("eval resume on idle task")
			return Result{Kind: EmptyResult}
		}
		t.arm(code, wake)
	}
	tracer().P("ns", t.ns.Name()).Debugf("resuming task")

	prev := e.active
	e.active = t
	caller := e.machine.Swap(t.saved)

	t.resume <- struct{}{}
	<-t.yielded

	t.saved = e.machine.Swap(caller)
	e.active = prev

	res := t.pending
	if res.Settled() {
		t.code = nil
		t.wake = nil
		t.pending = Result{Kind: NoResult}
		t.resume = nil
		t.yielded = nil
	}
	tracer().P("ns", t.ns.Name()).Debugf("task yielded %s", res)
	return res
}

// evalSync runs code to completion on the caller's interpreter state.
func (e *Engine) evalSync(t *Task, code *interp.Script) Result {
	if code == nil {
		return Result{Kind: EmptyResult}
	}
	prev := e.active
	e.active = nil
	val, err := e.machine.Run(code, t.ns)
	e.active = prev
	if err != nil {
		tracer().Errorf("script error: %s", interp.CaptureError(e.machine))
		return Result{Kind: EmptyResult}
	}
	return Result{Kind: ValueResult, Value: val}
}

// Yield suspends the active task until its next wakeup. It is the single
// switch point for every blocking shim: the shim arms a wait whose
// completion calls Task.Wakeup, then yields.
//
// Yield returns nil on a regular resumption, ErrBlocked when called with no
// active task, and ErrTerminated when the resumption is part of teardown.
// Shims must propagate a non-nil error after releasing whatever they armed.
func (e *Engine) Yield() error {
	t := e.active
	if t == nil {
		return ErrBlocked
	}
	t.yielded <- struct{}{}
	<-t.resume
	if t.terminating {
		return ErrTerminated
	}
	return nil
}
