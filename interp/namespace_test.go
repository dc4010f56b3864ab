package interp

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewNamespace(t *testing.T) {
	ns := NewNamespace()
	if ns == nil {
		t.Fatal("no namespace created")
	}
	defer ns.Release()
	if Lookup(ns.Name()) != ns {
		t.Error("namespace not found in registry")
	}
}

func TestNamespaceRelease(t *testing.T) {
	ns := NewNamespace()
	name := ns.Name()
	ns.Retain()
	ns.Release()
	if Lookup(name) == nil {
		t.Error("namespace released while still referenced")
	}
	ns.Release()
	if Lookup(name) != nil {
		t.Error("namespace still registered after last release")
	}
}

func TestNamespaceSetGet(t *testing.T) {
	ns := NewNamespace()
	defer ns.Release()
	ns.Set("x", int64(7))
	if v, ok := ns.Get("x"); !ok || v != int64(7) {
		t.Errorf("expected x = 7, got %v", v)
	}
	ns.Delete("x")
	if _, ok := ns.Get("x"); ok {
		t.Error("x should be gone after Delete")
	}
}

func TestBindUnbindAbsent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.interp")
	defer teardown()
	//
	ns := NewNamespace()
	defer ns.Release()
	prev, existed := ns.Bind("request", "r1")
	if existed {
		t.Error("binding of absent name reported as shadowed")
	}
	if v, ok := ns.Get("request"); !ok || v != "r1" {
		t.Errorf("expected request = r1, got %v", v)
	}
	ns.Unbind("request", prev, existed)
	if _, ok := ns.Get("request"); ok {
		t.Error("unbind should remove a binding that was absent before")
	}
}

func TestBindUnbindShadowed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "script.interp")
	defer teardown()
	//
	ns := NewNamespace()
	defer ns.Release()
	ns.Set("request", "original")
	prev, existed := ns.Bind("request", "temporary")
	if !existed || prev != "original" {
		t.Errorf("expected shadowed binding with previous value, got %v / %v", prev, existed)
	}
	if v, _ := ns.Get("request"); v != "original" {
		t.Error("bind overwrote an existing binding")
	}
	ns.Unbind("request", prev, existed)
	if v, ok := ns.Get("request"); !ok || v != "original" {
		t.Errorf("unbind changed a pre-existing binding: %v", v)
	}
}

func TestBindUnbindStackDiscipline(t *testing.T) {
	ns := NewNamespace()
	defer ns.Release()
	ns.Set("a", int64(1))
	before := snapshot(ns)
	for _, name := range []string{"a", "b"} {
		prev, existed := ns.Bind(name, "tmp")
		ns.Unbind(name, prev, existed)
	}
	after := snapshot(ns)
	if len(before) != len(after) {
		t.Fatalf("key set changed: %v vs %v", before, after)
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("binding %q changed from %v to %v", k, v, after[k])
		}
	}
}

func snapshot(ns *Namespace) map[string]Value {
	out := make(map[string]Value)
	ns.Each(func(k string, v Value) {
		out[k] = v
	})
	return out
}
