package builtins

import (
	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
)

// resolveBuiltin resolves a host name to its addresses, returning them as a
// list of strings. Resolution is bounded by the engine's resolve timeout;
// a terminated yield cancels the lookup.
func resolveBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "resolve",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := wantArgs("resolve", args, 1); err != nil {
				return nil, err
			}
			host, err := wantString("resolve", args, 0)
			if err != nil {
				return nil, err
			}
			task, err := activeTask(e)
			if err != nil {
				return nil, err
			}
			var addrs []string
			var rerr error
			cancel := e.Reactor().Resolve(host, e.ResolveTimeout(), func(a []string, err error) {
				addrs, rerr = a, err
				task.Wakeup()
			})
			if err := e.Yield(); err != nil {
				cancel()
				return nil, hostError(err)
			}
			if rerr != nil {
				return nil, interp.NewRaised("ResolveError", rerr.Error())
			}
			list := make(interp.List, len(addrs))
			for i, a := range addrs {
				list[i] = a
			}
			tracer().P("host", host).Debugf("resolved to %d address(es)", len(addrs))
			return list, nil
		},
	}
}
