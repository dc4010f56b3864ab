/*
Package shell/main provides an interactive command line tool for the
script dialect. Lines are evaluated as tasks against a live reactor, so
the blocking builtins (sleep, resolve, the socket shims) work
interactively: the shell drives the reactor until a suspended line has
settled. It serves as a sandbox for experiments with scripts before they
are wired into a host configuration.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.shell'
func tracer() tracing.Trace {
	return tracing.Select("script.shell")
}
