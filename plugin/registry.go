// Package plugin implements the engine's data-plugin registry: a
// lazily-initialized, type-indexed container table. Each plugin type is
// assigned a stable integer slot the first time any Context anywhere in
// the process asks for it. Every Get still resolves that slot through
// reflect.TypeOf and a mutex-guarded map lookup before indexing the
// registry's slice.
package plugin

import (
	"reflect"
	"sync"
)

var (
	slotMu   sync.Mutex
	slotOf   = make(map[reflect.Type]int)
	nextSlot int
)

func slotFor(t reflect.Type) int {
	slotMu.Lock()
	defer slotMu.Unlock()
	if s, ok := slotOf[t]; ok {
		return s
	}
	s := nextSlot
	nextSlot++
	slotOf[t] = s
	return s
}

// Registry owns one Context's plugin slots. The zero value is ready to use.
type Registry struct {
	mu     sync.Mutex
	values []any // indexed by process-global slot; nil until first Get
	init   []bool
}

// New returns an empty plugin registry.
func New() *Registry {
	return &Registry{}
}

func (r *Registry) ensureLen(slot int) {
	if slot < len(r.values) {
		return
	}
	grownValues := make([]any, slot+1)
	copy(grownValues, r.values)
	r.values = grownValues
	grownInit := make([]bool, slot+1)
	copy(grownInit, r.init)
	r.init = grownInit
}

// Get returns the registry's instance of T, constructing it via initFn on
// first access and caching the result for the lifetime of the Context.
// Two unrelated plugin types never collide, regardless of access order.
func Get[T any](r *Registry, initFn func() T) T {
	var zero T
	slot := slotFor(reflect.TypeOf(&zero).Elem())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLen(slot)
	if r.init[slot] {
		return r.values[slot].(T)
	}
	v := initFn()
	r.values[slot] = v
	r.init[slot] = true
	return v
}

// GetMut is Get for plugin types that are themselves pointers/mutable
// containers; it exists as a distinct name to mirror the read/write
// surface the entity property store exposes (GetProperty/SetProperty),
// even though the implementation is identical — mutation happens through
// the returned T's own methods.
func GetMut[T any](r *Registry, initFn func() T) T {
	return Get(r, initFn)
}

// Len reports how many plugin slots have been materialized in this
// registry (diagnostics only).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.init {
		if b {
			n++
		}
	}
	return n
}
