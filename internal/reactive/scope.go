package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope is a node in an ownership tree. Disposing a scope disposes its
// children first, then runs its own cleanups in reverse registration order.
type Scope struct {
	rt     *Runtime
	parent *Scope

	mu       sync.Mutex
	children map[*Scope]struct{}
	cleanups []func()
	disposed atomic.Bool
}

// NewScope creates a root scope bound to rt.
func (rt *Runtime) NewScope() *Scope {
	return &Scope{rt: rt, children: make(map[*Scope]struct{})}
}

// Runtime returns the runtime the scope schedules on.
func (s *Scope) Runtime() *Runtime {
	return s.rt
}

// Child creates a scope owned by s. A child of a disposed scope is
// born disposed.
func (s *Scope) Child() *Scope {
	c := &Scope{rt: s.rt, parent: s, children: make(map[*Scope]struct{})}

	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		c.disposed.Store(true)
		return c
	}
	s.children[c] = struct{}{}
	s.mu.Unlock()
	return c
}

// OnDispose registers fn to run when s is disposed. If s is already
// disposed fn runs immediately.
func (s *Scope) OnDispose(fn func()) {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Alive reports whether s has not been disposed.
func (s *Scope) Alive() bool {
	return !s.disposed.Load()
}

// Dispose tears down s and everything it owns. It is idempotent.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		return
	}
	s.disposed.Store(true)
	children := make([]*Scope, 0, len(s.children))
	for c := range s.children {
		children = append(children, c)
	}
	s.children = nil
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for _, c := range children {
		c.Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if p := s.parent; p != nil {
		p.mu.Lock()
		delete(p.children, s)
		p.mu.Unlock()
	}
}
