package reactive

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Errors returned by the runtime.
var (
	ErrAlreadyRunning = errors.New("runtime is already running")
	ErrNotRunning     = errors.New("runtime is not running")
)

// Runtime is a cooperative single-threaded task loop.
type Runtime struct {
	logger *zap.Logger

	mu      sync.Mutex
	queue   []func()
	running bool
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}

	executed atomic.Uint64
	panicked atomic.Uint64
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger used to report task panics.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// NewRuntime creates a stopped runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		logger: zap.NewNop(),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Start launches the loop goroutine.
func (rt *Runtime) Start() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.running {
		return ErrAlreadyRunning
	}
	rt.running = true
	rt.quit = make(chan struct{})
	rt.done = make(chan struct{})
	go rt.loop(rt.quit, rt.done)
	return nil
}

// Stop runs the tasks already queued, then stops the loop. Tasks posted
// after Stop are dropped.
func (rt *Runtime) Stop(ctx context.Context) error {
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return ErrNotRunning
	}
	rt.running = false
	close(rt.quit)
	done := rt.done
	rt.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post appends fn to the queue. It never blocks. It reports false if the
// runtime is not running and fn was dropped.
func (rt *Runtime) Post(fn func()) bool {
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return false
	}
	rt.queue = append(rt.queue, fn)
	rt.mu.Unlock()

	select {
	case rt.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to run. Calling it from a task deadlocks
// until ctx is done.
func (rt *Runtime) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !rt.Post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrNotRunning
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every task posted before it has run.
func (rt *Runtime) Flush(ctx context.Context) error {
	return rt.Call(ctx, func() {})
}

// Pending returns the number of queued tasks.
func (rt *Runtime) Pending() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.queue)
}

// Executed returns the number of tasks run so far.
func (rt *Runtime) Executed() uint64 {
	return rt.executed.Load()
}

// Panicked returns the number of tasks that panicked.
func (rt *Runtime) Panicked() uint64 {
	return rt.panicked.Load()
}

func (rt *Runtime) loop(quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-rt.wake:
			rt.drain()
		case <-quit:
			rt.drain()
			return
		}
	}
}

// drain runs queued tasks in FIFO order, including ones they post.
func (rt *Runtime) drain() {
	for {
		rt.mu.Lock()
		if len(rt.queue) == 0 {
			rt.mu.Unlock()
			return
		}
		batch := rt.queue
		rt.queue = nil
		rt.mu.Unlock()

		for _, fn := range batch {
			rt.run(fn)
		}
	}
}

func (rt *Runtime) run(fn func()) {
	defer func() {
		rt.executed.Add(1)
		if r := recover(); r != nil {
			rt.panicked.Add(1)
			rt.logger.Error("reactive task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn()
}
