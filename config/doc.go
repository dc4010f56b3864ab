/*
Package config builds a ready-to-run script host from a TOML description.

A configuration names inline scripts, script files to include (plain paths
or glob patterns), the per-task stack size and the resolver timeout.
Applying a configuration wires up a reactor, an engine and a namespace with
the host builtins installed, then evaluates the configured scripts
synchronously, in order, in that namespace. Configuration-time evaluation
has no task to suspend, so blocking calls fail there; scripts meant to
block belong into runtime tasks created against the Setup.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package config

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.config'.
func tracer() tracing.Trace {
	return tracing.Select("script.config")
}
