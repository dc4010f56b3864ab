/*
Package reactor implements a single-threaded event loop.

The loop drives posted events, one-shot timers and completions of
background operations (name lookups, socket I/O). Handlers always fire on
the goroutine that runs the loop; Post and Background are safe to call
from anywhere. Posting an event only schedules its handler, it never runs
it synchronously, which keeps call depth bounded and preserves fairness
between tasks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package reactor

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.reactor'.
func tracer() tracing.Trace {
	return tracing.Select("script.reactor")
}
