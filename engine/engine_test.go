package engine

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/cybermatrixco/nginx-python-module/interp"
	"github.com/cybermatrixco/nginx-python-module/reactor"
)

func mustCompile(t *testing.T, src string) *interp.Script {
	t.Helper()
	code, err := interp.Compile(src, "test.conf")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return code
}

func TestEvalSync(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	e := New(reactor.New())
	ns := interp.NewNamespace()
	defer ns.Release()
	task := e.NewTask(ns)
	defer task.Shutdown()
	res := e.Eval(task, mustCompile(t, "1 + 2"), nil)
	if res.Kind != ValueResult {
		t.Fatalf("expected value result, got %s", res)
	}
	if res.Value != int64(3) {
		t.Errorf("expected 3, got %s", interp.FormatValue(res.Value))
	}
}

func TestEvalPauseAndResume(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	r := reactor.New()
	e := New(r)
	ns := interp.NewNamespace()
	defer ns.Release()
	ns.Set("pause", &interp.Builtin{
		Name: "pause",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := e.Yield(); err != nil {
				return nil, err
			}
			return int64(42), nil
		},
	})
	task := e.NewTask(ns)
	defer task.Shutdown()
	wake := r.NewEvent("wake", func() {})

	res := e.Eval(task, mustCompile(t, "pause()"), wake)
	if res.Kind != AgainResult {
		t.Fatalf("expected suspension, got %s", res)
	}
	if e.Active() != nil {
		t.Error("active task not cleared after suspension")
	}
	res = e.Eval(task, nil, wake)
	if res.Kind != ValueResult || res.Value != int64(42) {
		t.Fatalf("expected 42 after resumption, got %s", res)
	}
}

func TestYieldWithoutTaskIsBlocked(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	e := New(reactor.New())
	ns := interp.NewNamespace()
	defer ns.Release()
	var seen error
	ns.Set("pause", &interp.Builtin{
		Name: "pause",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			seen = e.Yield()
			return nil, seen
		},
	})
	task := e.NewTask(ns)
	defer task.Shutdown()
	res := e.Eval(task, mustCompile(t, "pause()"), nil)
	if res.Kind != EmptyResult {
		t.Fatalf("expected empty result, got %s", res)
	}
	if !errors.Is(seen, ErrBlocked) {
		t.Errorf("expected ErrBlocked under synchronous evaluation, got %v", seen)
	}
}

func TestActiveTaskRestoredAroundNestedEval(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	r := reactor.New()
	e := New(r)
	ns := interp.NewNamespace()
	defer ns.Release()
	inner := mustCompile(t, "10 * 10")
	outerTask := e.NewTask(ns)
	defer outerTask.Shutdown()
	innerTask := e.NewTask(ns)
	defer innerTask.Shutdown()
	var during, after *Task
	var nested Result
	ns.Set("nest", &interp.Builtin{
		Name: "nest",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			during = e.Active()
			nested = e.Eval(innerTask, inner, nil)
			after = e.Active()
			return nil, nil
		},
	})
	wake := r.NewEvent("wake", func() {})
	res := e.Eval(outerTask, mustCompile(t, "nest()"), wake)
	if !res.Settled() {
		t.Fatalf("expected settled result, got %s", res)
	}
	if during != outerTask {
		t.Error("outer task not active inside its own builtin")
	}
	if after != outerTask {
		t.Error("active task not restored after nested evaluation")
	}
	if nested.Kind != ValueResult || nested.Value != int64(100) {
		t.Errorf("nested evaluation returned %s", nested)
	}
}

func TestShutdownUnwindsThroughFinally(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	r := reactor.New()
	e := New(r)
	ns := interp.NewNamespace()
	defer ns.Release()
	var seen error
	ns.Set("pause", &interp.Builtin{
		Name: "pause",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			if err := e.Yield(); err != nil {
				seen = err
				return nil, err
			}
			return nil, nil
		},
	})
	ns.Set("count", int64(0))
	task := e.NewTask(ns)
	wake := r.NewEvent("wake", func() {})

	src := "try {\n  pause()\n} finally {\n  count = count + 1\n}"
	res := e.Eval(task, mustCompile(t, src), wake)
	if res.Kind != AgainResult {
		t.Fatalf("expected suspension, got %s", res)
	}
	task.Shutdown()
	if !errors.Is(seen, ErrTerminated) {
		t.Errorf("expected ErrTerminated at the suspended yield, got %v", seen)
	}
	if v, _ := ns.Get("count"); v != int64(1) {
		t.Errorf("finally block ran %s times, expected once", interp.FormatValue(v))
	}
}

func TestFiberPanicSettlesEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	r := reactor.New()
	e := New(r)
	ns := interp.NewNamespace()
	defer ns.Release()
	ns.Set("boom", &interp.Builtin{
		Name: "boom",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			panic("unexpected host failure")
		},
	})
	task := e.NewTask(ns)
	defer task.Shutdown()
	wake := r.NewEvent("wake", func() {})
	res := e.Eval(task, mustCompile(t, "boom()"), wake)
	if res.Kind != EmptyResult {
		t.Fatalf("expected empty result after panic, got %s", res)
	}
	// the engine stays usable
	res = e.Eval(task, mustCompile(t, "7"), nil)
	if res.Kind != ValueResult || res.Value != int64(7) {
		t.Errorf("engine unusable after recovered panic: %s", res)
	}
}

func TestWakeupSchedulesResumption(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.engine")
	defer teardown()
	r := reactor.New()
	e := New(r)
	ns := interp.NewNamespace()
	defer ns.Release()
	ns.Set("pause", &interp.Builtin{
		Name: "pause",
		Fn: func(m *interp.Machine, args []interp.Value) (interp.Value, error) {
			task := e.Active()
			r.Submit("later", func() { task.Wakeup() })
			if err := e.Yield(); err != nil {
				return nil, err
			}
			return "done", nil
		},
	})
	task := e.NewTask(ns)
	defer task.Shutdown()
	var final Result
	var wake *reactor.Event
	wake = r.NewEvent("continue", func() {
		final = e.Eval(task, nil, wake)
	})
	res := e.Eval(task, mustCompile(t, "pause()"), wake)
	if res.Kind != AgainResult {
		t.Fatalf("expected suspension, got %s", res)
	}
	r.RunUntilIdle()
	if final.Kind != ValueResult || final.Value != "done" {
		t.Errorf("expected scheduled resumption to settle with done, got %s", final)
	}
}
