/*
Package interp implements the embedded interpreter the engine hosts,
consisting of namespaces, compiled scripts, the shared execution-state
machine, and the error extractor.

Namespaces

A namespace is the persistent variable-binding environment scripts execute
against. All tasks created within one configuration scope share a single
namespace; assignment in a script is visible to every later execution in
the same scope. Namespaces are reference-counted and registered under a
generated unique name, mirroring module registries of embeddable scripting
runtimes.

The Machine

A Machine owns the shared execution state: the call-depth counter, the
active call frame and the pending-exception triple. There is exactly one
Machine per engine instance, and it is the one mutable resource that the
engine multiplexes across suspendable tasks. The state is treated as an
opaque snapshot value with swap semantics (see Machine.Swap); the engine
exchanges it around every stack switch.

For a thorough discussion of an interpreter's runtime environment, refer to
"Language Implementation Patterns" by Terence Parr.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package interp

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.interp'.
func tracer() tracing.Trace {
	return tracing.Select("script.interp")
}
