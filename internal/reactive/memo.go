package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a derived value with explicitly declared inputs. It notifies its
// own subscribers only when a recompute yields a different value.
type Memo[K comparable] struct {
	scope   *Scope
	compute func() K

	mu      sync.RWMutex
	val     K
	pending atomic.Bool
	subs    Notifier
}

// NewMemo computes the initial value immediately and recomputes on the
// runtime whenever any input fires.
func NewMemo[K comparable](scope *Scope, compute func() K, inputs ...Source) *Memo[K] {
	m := &Memo[K]{scope: scope, compute: compute, val: compute()}
	for _, in := range inputs {
		scope.OnDispose(in.Subscribe(m.invalidate))
	}
	return m
}

// Get returns the last computed value.
func (m *Memo[K]) Get() K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.val
}

// Subscribe implements Source. Subscribers run on the runtime.
func (m *Memo[K]) Subscribe(fn func()) (cancel func()) {
	return m.subs.Subscribe(fn)
}

func (m *Memo[K]) invalidate() {
	if !m.pending.CompareAndSwap(false, true) {
		return
	}
	if !m.scope.rt.Post(m.recompute) {
		m.pending.Store(false)
	}
}

func (m *Memo[K]) recompute() {
	m.pending.Store(false)
	if !m.scope.Alive() {
		return
	}

	next := m.compute()
	m.mu.Lock()
	changed := next != m.val
	m.val = next
	m.mu.Unlock()

	if changed {
		m.subs.Notify()
	}
}

// Effect runs a function on the runtime once at creation and again after
// any of its inputs fire.
type Effect struct {
	scope   *Scope
	fn      func()
	pending atomic.Bool
	runs    atomic.Uint64
}

// NewEffect subscribes fn to inputs and schedules the first run.
func NewEffect(scope *Scope, fn func(), inputs ...Source) *Effect {
	e := &Effect{scope: scope, fn: fn}
	for _, in := range inputs {
		scope.OnDispose(in.Subscribe(e.trigger))
	}
	e.trigger()
	return e
}

// Runs returns how many times the effect has run.
func (e *Effect) Runs() uint64 {
	return e.runs.Load()
}

func (e *Effect) trigger() {
	if !e.pending.CompareAndSwap(false, true) {
		return
	}
	if !e.scope.rt.Post(e.run) {
		e.pending.Store(false)
	}
}

func (e *Effect) run() {
	e.pending.Store(false)
	if !e.scope.Alive() {
		return
	}
	e.runs.Add(1)
	e.fn()
}
