package builtins

import (
	"errors"
	"fmt"

	script "github.com/cybermatrixco/nginx-python-module"
	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
)

// Install binds the host vocabulary into ns: the blocking-call shims, the
// diagnostics helpers and the `ngx` constant table.
func Install(e *engine.Engine, ns *interp.Namespace) {
	ns.Set("ngx", constTable())
	ns.Set("sleep", sleepBuiltin(e))
	ns.Set("resolve", resolveBuiltin(e))
	ns.Set("connect", connectBuiltin(e))
	ns.Set("send", sendBuiltin(e))
	ns.Set("recv", recvBuiltin(e))
	ns.Set("close", closeBuiltin(e))
	ns.Set("log", logBuiltin())
	ns.Set("fail", failBuiltin())
}

// constTable builds the `ngx` table. Field values are plain ints so that
// scripts can compare and pass them around without a dedicated type.
func constTable() *interp.Table {
	return interp.NewTable("ngx", map[string]interp.Value{
		"OK":       int64(script.OK),
		"ERROR":    int64(script.Error),
		"AGAIN":    int64(script.Again),
		"BUSY":     int64(script.Busy),
		"DONE":     int64(script.Done),
		"DECLINED": int64(script.Declined),
		"ABORT":    int64(script.Abort),

		"LOG_EMERG":  int64(script.LogEmerg),
		"LOG_ALERT":  int64(script.LogAlert),
		"LOG_CRIT":   int64(script.LogCrit),
		"LOG_ERR":    int64(script.LogErr),
		"LOG_WARN":   int64(script.LogWarn),
		"LOG_NOTICE": int64(script.LogNotice),
		"LOG_INFO":   int64(script.LogInfo),
		"LOG_DEBUG":  int64(script.LogDebug),

		"SEND_LAST":  int64(script.SendLast),
		"SEND_FLUSH": int64(script.SendFlush),
	})
}

// hostError converts a shim-level failure into the exception a script sees.
func hostError(err error) error {
	switch {
	case errors.Is(err, engine.ErrTerminated):
		return interp.NewRaised("TerminationError", err.Error())
	case errors.Is(err, engine.ErrBlocked):
		return interp.NewRaised("RuntimeError", err.Error())
	}
	return err
}

// activeTask fetches the task a shim suspends, failing like a blocked yield
// when evaluation is synchronous.
func activeTask(e *engine.Engine) (*engine.Task, error) {
	t := e.Active()
	if t == nil {
		return nil, hostError(engine.ErrBlocked)
	}
	return t, nil
}

func wantArgs(name string, args []interp.Value, n int) error {
	if len(args) != n {
		return interp.NewRaised("TypeError",
			fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args)))
	}
	return nil
}

func wantInt(name string, args []interp.Value, i int) (int64, error) {
	switch x := args[i].(type) {
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	}
	return 0, interp.NewRaised("TypeError",
		fmt.Sprintf("%s: argument %d must be a number, not %s", name, i+1, interp.TypeName(args[i])))
}

func wantString(name string, args []interp.Value, i int) (string, error) {
	if s, ok := args[i].(string); ok {
		return s, nil
	}
	return "", interp.NewRaised("TypeError",
		fmt.Sprintf("%s: argument %d must be a string, not %s", name, i+1, interp.TypeName(args[i])))
}

// logBuiltin routes script log calls into tracing. The one-argument form
// defaults to info severity.
func logBuiltin() *interp.Builtin {
	return &interp.Builtin{
		Name: "log",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			sev := script.LogInfo
			msgIdx := 0
			if len(args) == 2 {
				lvl, err := wantInt("log", args, 0)
				if err != nil {
					return nil, err
				}
				sev = script.Severity(lvl)
				msgIdx = 1
			} else if len(args) != 1 {
				return nil, interp.NewRaised("TypeError", "log expects 1 or 2 arguments")
			}
			msg := interp.FormatValue(args[msgIdx])
			switch {
			case sev <= script.LogErr:
				tracer().Errorf("%s", msg)
			case sev <= script.LogInfo:
				tracer().Infof("%s", msg)
			default:
				tracer().Debugf("%s", msg)
			}
			return nil, nil
		},
	}
}

// failBuiltin raises a script-level exception with the given message.
func failBuiltin() *interp.Builtin {
	return &interp.Builtin{
		Name: "fail",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := wantArgs("fail", args, 1); err != nil {
				return nil, err
			}
			return nil, interp.NewRaised("ScriptError", interp.FormatValue(args[0]))
		},
	}
}
