/*
Package engine is the cooperative execution core.

The engine lets scripts perform apparently-blocking operations while their
host runs inside a single-threaded reactor. Each suspendable execution is a
Task riding a goroutine-backed fiber: a blocking-call shim arms a reactor
wait whose completion is Task.Wakeup, then calls Engine.Yield, which parks
the fiber and hands control back to whatever called Engine.Eval. A later
wakeup schedules another Eval, which resumes the fiber at the exact yield
point.

The one process-wide mutable resource multiplexed here is the shared
interpreter execution state (call-depth counter, active frame, pending
exception). The engine owns it through an interp.Machine — one per engine
instance, so parallel reactors hold isolated copies — and swaps it in and
out around every fiber switch. The active-task pointer is saved and
restored around Eval, which makes re-entrant evaluation (one script
evaluation triggering another, nested one) behave like an implicit stack.

Suspension happens only at explicit yields; Wakeup only enqueues a future
resumption and never resumes synchronously, even when it fires from within
another task's execution.

Cancellation is cooperative. Terminate sets a monotonic flag; unwinding
requires driving the task through Eval until it settles (Task.Shutdown), at
which point every resume surfaces a termination error at the suspended
yield and script-level cleanup runs on the way out.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package engine

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.engine'.
func tracer() tracing.Trace {
	return tracing.Select("script.engine")
}
