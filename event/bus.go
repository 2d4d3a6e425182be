// Package event implements the engine's typed event bus: subscriptions
// keyed by event type, with publication deferred to the caller so a
// Context can interleave dispatch with its immediate-callback drain.
package event

import (
	"reflect"
	"sync"
)

// Bus holds an ordered list of handlers per event type. The zero value
// is ready to use.
type Bus struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]func(any)
}

// New returns an empty event bus.
func New() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// SubscribeToEvent registers handler for every future EmitEvent[T] on b.
// Handlers added while a dispatch for T is in flight take effect only for
// subsequent emissions, never the one in progress.
func SubscribeToEvent[T any](b *Bus, handler func(T)) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[reflect.Type][]func(any))
	}
	b.handlers[t] = append(b.handlers[t], func(v any) { handler(v.(T)) })
}

// EmitEvent does not invoke handlers itself: it snapshots the current
// subscriber list for T and returns one thunk per handler, in
// subscription order, for the caller (the Context main loop) to enqueue
// as immediate callbacks. This is what makes dispatch "deferred": by the
// time a thunk runs, the property/entity mutation that triggered the
// event has already fully committed.
func EmitEvent[T any](b *Bus, value T) []func() {
	var zero T
	t := reflect.TypeOf(&zero).Elem()

	b.mu.Lock()
	hs := append([]func(any){}, b.handlers[t]...)
	b.mu.Unlock()

	thunks := make([]func(), 0, len(hs))
	for _, h := range hs {
		h := h
		thunks = append(thunks, func() { h(value) })
	}
	return thunks
}
