package reactor

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestPostRunsHandlerOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.reactor")
	defer teardown()
	//
	r := New()
	count := 0
	ev := r.NewEvent("counter", func() { count++ })
	r.Post(ev)
	r.Post(ev) // deduped while queued
	r.RunUntilIdle()
	if count != 1 {
		t.Errorf("expected 1 dispatch, got %d", count)
	}
	r.Post(ev) // repostable after dispatch
	r.RunUntilIdle()
	if count != 2 {
		t.Errorf("expected 2 dispatches, got %d", count)
	}
}

func TestPostFromHandler(t *testing.T) {
	r := New()
	var order []string
	second := r.NewEvent("second", func() { order = append(order, "second") })
	first := r.NewEvent("first", func() {
		order = append(order, "first")
		r.Post(second) // scheduled, not run synchronously
		order = append(order, "first-done")
	})
	r.Post(first)
	r.RunUntilIdle()
	want := []string{"first", "first-done", "second"}
	if len(order) != len(want) {
		t.Fatalf("unexpected dispatch order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected dispatch order %v", order)
		}
	}
}

func TestTimerOrdering(t *testing.T) {
	r := New()
	var order []int
	r.After(30*time.Millisecond, func() { order = append(order, 2) })
	r.After(10*time.Millisecond, func() { order = append(order, 1) })
	r.After(50*time.Millisecond, func() { order = append(order, 3) })
	r.RunUntilIdle()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("timers fired out of order: %v", order)
	}
}

func TestTimerCancelDoesNotDelayIdle(t *testing.T) {
	r := New()
	fired := false
	timer := r.After(10*time.Second, func() { fired = true })
	timer.Cancel()
	start := time.Now()
	r.RunUntilIdle()
	if fired {
		t.Error("canceled timer fired")
	}
	if time.Since(start) > time.Second {
		t.Error("canceled timer kept the loop waiting")
	}
}

func TestBackgroundCompletion(t *testing.T) {
	r := New()
	done := false
	r.Background("work", func() func() {
		time.Sleep(20 * time.Millisecond)
		return func() { done = true }
	})
	r.RunUntilIdle()
	if !done {
		t.Error("background completion did not run before idle")
	}
}

func TestResolveLocalhost(t *testing.T) {
	r := New()
	var addrs []string
	var rerr error
	r.Resolve("localhost", 5*time.Second, func(a []string, err error) {
		addrs, rerr = a, err
	})
	r.RunUntilIdle()
	if rerr != nil {
		t.Skipf("resolver unavailable: %v", rerr)
	}
	if len(addrs) == 0 {
		t.Error("expected at least one address for localhost")
	}
}
