/*
Package script is a cooperative script engine for event-driven servers.

Scripts run against an embedded interpreter and may perform
apparently-blocking operations (timed sleeps, socket I/O, name resolution)
while hosted inside a single-threaded reactor, without ever blocking the
reactor itself. Package structure is as follows:

■ scan: Package scan tokenizes script source text, backed by lexmachine.

■ interp: Package interp implements the embedded interpreter: namespaces,
compiled scripts, the shared execution-state machine and the error
extractor.

■ reactor: Package reactor implements the single-threaded event loop with
posted events, one-shot timers and background completions.

■ engine: Package engine is the cooperative execution core. It schedules
suspendable tasks on goroutine-backed fibers and multiplexes the shared
interpreter state across them.

■ builtins: Package builtins provides the blocking-call shims (sleep,
resolve, sockets) and utility builtins registered into namespaces.

■ config: Package config loads the engine configuration and evaluates
configuration-time scripts and includes.

The base package contains data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package script
