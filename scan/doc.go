/*
Package scan tokenizes source text of the script dialect.

The tokenizer is backed by lexmachine, a DFA-based scanner generator.
For more information on lexmachine, see e.g.
https://hackthology.com/how-to-tokenize-complex-strings-with-lexmachine.html

The lexer for the dialect is compiled once, lazily, on first use. A scanner
is instantiated for each concrete input sequence and implements the
Tokenizer interface. On the parser side tokens are read until EOF.

	sc, err := scan.NewScanner("x = 1 + 2")
	if err != nil {
		// do error handling
	}
	for {
		token := sc.NextToken()
		if token.TokType() == scan.EOF {
			break
		}
		…
	}

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package scan

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'script.scan'.
func tracer() tracing.Trace {
	return tracing.Select("script.scan")
}
