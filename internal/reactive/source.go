package reactive

import "sync"

// Source is anything that announces changes. fn may be called from any
// goroutine and must not block. The returned func cancels the
// subscription and is safe to call more than once.
type Source interface {
	Subscribe(fn func()) (cancel func())
}

// Notifier is a set of callbacks. The zero value is ready to use. It
// implements Source.
type Notifier struct {
	mu   sync.Mutex
	fns  map[uint64]func()
	next uint64
}

// Subscribe implements Source.
func (s *Notifier) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	if s.fns == nil {
		s.fns = make(map[uint64]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// Notify calls every subscriber on the calling goroutine.
func (s *Notifier) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of live subscriptions.
func (s *Notifier) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

// Signal is a settable value. Subscribers are notified on the runtime
// after every Set.
type Signal[T any] struct {
	rt   *Runtime
	mu   sync.RWMutex
	val  T
	subs Notifier
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{rt: rt, val: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

// Set stores v and schedules notification.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
	s.rt.Post(s.subs.Notify)
}

// Update applies fn to the current value under the lock and schedules
// notification.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.val = fn(s.val)
	s.mu.Unlock()
	s.rt.Post(s.subs.Notify)
}

// Subscribe implements Source.
func (s *Signal[T]) Subscribe(fn func()) (cancel func()) {
	return s.subs.Subscribe(fn)
}

// Subscribers returns the number of live subscriptions.
func (s *Signal[T]) Subscribers() int {
	return s.subs.Len()
}
