package bridge

import (
	"sync"
	"weak"
)

// Registry maps namespaces to the most recently registered live instance.
// Values are weak pointers: an instance that has been collected resolves as
// absent and its entry is pruned on the next lookup. Safe for concurrent use
// from any goroutine.
type Registry struct {
	entries sync.Map // map[string]weak.Pointer[Instance]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register records inst as the current instance for ns, replacing any
// previous entry.
func (r *Registry) Register(ns string, inst *Instance) {
	if inst == nil {
		return
	}
	r.entries.Store(ns, weak.Make(inst))
}

// Lookup returns the live instance registered for ns.
func (r *Registry) Lookup(ns string) (*Instance, bool) {
	v, ok := r.entries.Load(ns)
	if !ok {
		return nil, false
	}
	wp := v.(weak.Pointer[Instance])
	inst := wp.Value()
	if inst == nil {
		r.entries.CompareAndDelete(ns, wp)
		return nil, false
	}
	return inst, true
}

// Unregister removes whatever entry ns has.
func (r *Registry) Unregister(ns string) {
	r.entries.Delete(ns)
}

// unregisterInstance removes the entry only while it still points at inst,
// so tearing down an old instance never drops its replacement.
func (r *Registry) unregisterInstance(ns string, inst *Instance) bool {
	return r.entries.CompareAndDelete(ns, weak.Make(inst))
}

// Range calls fn for each live entry until fn returns false. Collected
// entries are pruned and skipped.
func (r *Registry) Range(fn func(ns string, inst *Instance) bool) {
	r.entries.Range(func(key, value any) bool {
		ns := key.(string)
		wp := value.(weak.Pointer[Instance])
		inst := wp.Value()
		if inst == nil {
			r.entries.CompareAndDelete(ns, wp)
			return true
		}
		return fn(ns, inst)
	})
}

// Len counts live entries.
func (r *Registry) Len() int {
	n := 0
	r.Range(func(string, *Instance) bool {
		n++
		return true
	})
	return n
}
