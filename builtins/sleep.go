package builtins

import (
	"time"

	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
)

// sleepBuiltin suspends the calling script for the given number of
// milliseconds. The timer is canceled when the yield fails, so a terminated
// task never leaves a wakeup armed.
func sleepBuiltin(e *engine.Engine) *interp.Builtin {
	return &interp.Builtin{
		Name: "sleep",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := wantArgs("sleep", args, 1); err != nil {
				return nil, err
			}
			ms, err := wantInt("sleep", args, 0)
			if err != nil {
				return nil, err
			}
			if ms < 0 {
				return nil, interp.NewRaised("ValueError", "sleep: negative duration")
			}
			task, err := activeTask(e)
			if err != nil {
				return nil, err
			}
			tracer().Debugf("sleeping for %d ms", ms)
			timer := e.Reactor().After(time.Duration(ms)*time.Millisecond, task.Wakeup)
			if err := e.Yield(); err != nil {
				timer.Cancel()
				return nil, hostError(err)
			}
			return nil, nil
		},
	}
}
