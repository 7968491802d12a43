// Package cache provides the shared-state primitives used by the geolocation
// resolver and the restriction registry: a copy-on-write snapshot and a TTL
// map built on top of it.
//
// Readers never lock. Writers are serialized, build a new value from the
// current one and publish it with a single atomic pointer swap, so a reader
// observes either the old or the new state in full.
package cache

import (
	"sync"
	"sync/atomic"
)

// Snapshot holds an immutable value of T behind an atomic pointer.
type Snapshot[T any] struct {
	ptr atomic.Pointer[T]
	mu  sync.Mutex
}

func NewSnapshot[T any](initial T) *Snapshot[T] {
	s := &Snapshot[T]{}
	s.ptr.Store(&initial)
	return s
}

// Load returns the current value. Callers must treat it as read-only.
func (s *Snapshot[T]) Load() T {
	return *s.ptr.Load()
}

// Update replaces the value with fn(current). fn must return a fresh value and
// leave current untouched, since concurrent readers may still hold it.
func (s *Snapshot[T]) Update(fn func(current T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(*s.ptr.Load())
	s.ptr.Store(&next)
}
