package interp

import (
	"fmt"
	"strings"

	"github.com/cnf/structhash"
)

// Script is an immutable, pre-translated executable unit. It is compiled
// once at configuration time and may afterwards be executed by any number
// of tasks. The origin label ("file:line") names where the source text came
// from and feeds diagnostics.
type Script struct {
	body   []Stmt
	file   string
	origin string
	hash   string
}

// CompileError reports malformed script text. It is fatal at configuration
// time.
type CompileError struct {
	Msg    string
	Origin string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Msg, e.Origin)
}

// fingerprintable feeds structhash; bump Dialect whenever the surface
// syntax changes incompatibly, so stale cache keys cannot collide.
type fingerprintable struct {
	Src     string
	Dialect int
}

// Fingerprint computes the stable hash Compile assigns to src, usable as a
// cache key before compiling.
func Fingerprint(src string) string {
	h, err := structhash.Hash(fingerprintable{Src: src, Dialect: 1}, 1)
	if err != nil {
		// structhash cannot fail on a flat struct of scalars; guard anyway
		return ""
	}
	return h
}

// Compile translates source text into a Script. The origin label is
// retained for diagnostics and becomes the source-file part of tracebacks.
func Compile(src, origin string) (*Script, error) {
	body, err := parse(src, origin)
	if err != nil {
		tracer().P("origin", origin).Errorf("compile error: %v", err)
		return nil, err
	}
	return &Script{
		body:   body,
		file:   originFile(origin),
		origin: origin,
		hash:   Fingerprint(src),
	}, nil
}

// Origin returns the origin label the script was compiled with.
func (s *Script) Origin() string {
	return s.origin
}

// File returns the source-file part of the origin label.
func (s *Script) File() string {
	return s.file
}

// Fingerprint returns a stable hash of the source text, usable as a cache
// key for compiled scripts.
func (s *Script) Fingerprint() string {
	return s.hash
}

// originFile strips a trailing ":line" from an origin label. Labels without
// a line part are returned unchanged.
func originFile(origin string) string {
	if i := strings.LastIndex(origin, ":"); i > 0 {
		tail := origin[i+1:]
		if tail != "" && strings.Trim(tail, "0123456789") == "" {
			return origin[:i]
		}
	}
	return origin
}
