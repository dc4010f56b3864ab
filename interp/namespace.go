package interp

import (
	"sync"

	"github.com/google/uuid"
)

// Namespace is the shared variable-binding environment scripts execute
// against. Keys are unique, insertion order is irrelevant. One namespace is
// shared by every task created within the same configuration scope.
//
// Namespaces are reference-counted: the creating scope holds the first
// reference, Retain adds one, Release drops one. When the last reference is
// gone the namespace is removed from the registry.
type Namespace struct {
	name string
	vars map[string]Value
	refs int
}

// The namespace registry maps generated names to live namespaces, mirroring
// a module registry. Guarded for the sake of parallel engine instances.
var (
	registryMx sync.Mutex
	registry   = make(map[string]*Namespace)
)

// NewNamespace creates an empty namespace with a freshly generated unique
// name and registers it.
func NewNamespace() *Namespace {
	ns := &Namespace{
		name: "ns-" + uuid.NewString(),
		vars: make(map[string]Value),
		refs: 1,
	}
	registryMx.Lock()
	registry[ns.name] = ns
	registryMx.Unlock()
	tracer().P("ns", ns.name).Debugf("created namespace")
	return ns
}

// Lookup finds a registered namespace by name. Returns nil if the name is
// unknown or the namespace has been released.
func Lookup(name string) *Namespace {
	registryMx.Lock()
	defer registryMx.Unlock()
	return registry[name]
}

// Name returns the generated registry name of the namespace.
func (ns *Namespace) Name() string {
	return ns.name
}

// Retain adds a reference. Returns the namespace (for chaining).
func (ns *Namespace) Retain() *Namespace {
	ns.refs++
	return ns
}

// Release drops a reference. The last release removes the namespace from
// the registry.
func (ns *Namespace) Release() {
	ns.refs--
	if ns.refs > 0 {
		return
	}
	registryMx.Lock()
	delete(registry, ns.name)
	registryMx.Unlock()
	tracer().P("ns", ns.name).Debugf("released namespace")
}

// Get looks up a binding.
func (ns *Namespace) Get(name string) (Value, bool) {
	v, ok := ns.vars[name]
	return v, ok
}

// Set creates or overwrites a binding.
func (ns *Namespace) Set(name string, v Value) {
	ns.vars[name] = v
}

// Delete removes a binding, if present.
func (ns *Namespace) Delete(name string) {
	delete(ns.vars, name)
}

// Size counts the bindings.
func (ns *Namespace) Size() int {
	return len(ns.vars)
}

// Each iterates over each binding, executing a mapper function.
func (ns *Namespace) Each(mapper func(string, Value)) {
	for k, v := range ns.vars {
		mapper(k, v)
	}
}

// Bind makes a scoped temporary binding: it sets name only when the name is
// not already bound, and reports what was there before. The returned pair
// feeds Unbind, so that a caller can wrap a section of execution in
// Bind/Unbind and have a per-task value visible to scripts for exactly that
// duration.
//
// When the name is already bound, Bind writes nothing and signals "already
// shadowed" by returning the existing value with existed == true.
func (ns *Namespace) Bind(name string, v Value) (prev Value, existed bool) {
	if old, ok := ns.vars[name]; ok {
		tracer().P("ns", ns.name).Debugf("binding %q already shadowed", name)
		return old, true
	}
	ns.vars[name] = v
	return nil, false
}

// Unbind reverts a Bind. If the name was absent before, it is removed;
// otherwise nothing happens, since Bind never overwrote the existing value.
func (ns *Namespace) Unbind(name string, prev Value, existed bool) {
	if !existed {
		delete(ns.vars, name)
	}
}
