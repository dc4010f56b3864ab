/*
Package builtins binds the host vocabulary into script namespaces.

Installed are the blocking-call shims (sleep, resolve, connect, send, recv,
close), the diagnostics helpers (log, fail) and the `ngx` constant
table carrying status codes, log severities and send flags. Every shim
follows the same shape: arm a reactor wait whose completion wakes the
active task, yield, and on a failed yield release whatever was armed before
propagating the error into the script as an exception.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package builtins

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.builtins'.
func tracer() tracing.Trace {
	return tracing.Select("script.builtins")
}
