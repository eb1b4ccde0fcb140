package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool executes jobs on a fixed set of goroutines.
type Pool struct {
	// Configuration
	queueSize   int
	workerCount int
	timeout     time.Duration

	// State
	mu      sync.Mutex // protects queue creation/destruction
	queue   chan task
	running atomic.Bool
	wg      sync.WaitGroup

	panicHandler PanicHandler
	onResult     func(Result)

	// Stats
	submitted   atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	timedOut    atomic.Uint64
	totalTimeNs atomic.Int64
}

type task struct {
	ctx context.Context
	job Job
}

// Option configures a Pool.
type Option func(*Pool)

// WithQueueSize sets the job queue size.
func WithQueueSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(p *Pool) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithJobTimeout bounds each job's context. Zero means no deadline.
func WithJobTimeout(timeout time.Duration) Option {
	return func(p *Pool) {
		p.timeout = timeout
	}
}

// WithPanicHandler sets the panic handler.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) {
		p.panicHandler = h
	}
}

// WithResultHook registers fn to observe every executed job. It runs on
// the worker goroutine.
func WithResultHook(fn func(Result)) Option {
	return func(p *Pool) {
		p.onResult = fn
	}
}

// NewPool creates a stopped pool. By default it runs one worker per CPU
// with a queue of 1024 jobs.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		queueSize:    1024,
		workerCount:  runtime.NumCPU(),
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = make(chan task, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return nil
}

// Stop stops accepting jobs and waits for queued ones to finish or for ctx
// to be done.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues job without blocking. It returns ErrQueueFull if the queue
// is at capacity and ErrNotRunning if the pool is stopped.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	// Hold the lock so Stop cannot close the queue under us.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return ErrNotRunning
	}

	select {
	case p.queue <- task{ctx: ctx, job: job}:
		p.submitted.Add(1)
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.queue {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	p.processed.Add(1)

	result := executeWithTimeout(t.ctx, t.job, p.panicHandler, p.timeout)
	p.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Panicked:
		p.panicked.Add(1)
	case result.Skipped:
		p.failed.Add(1)
	case result.Error != nil:
		if errors.Is(result.Error, context.DeadlineExceeded) {
			p.timedOut.Add(1)
		}
		p.failed.Add(1)
	default:
		p.succeeded.Add(1)
	}

	if p.onResult != nil {
		p.onResult(result)
	}
}

// QueueDepth returns the number of queued jobs, or 0 if stopped.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.Load() {
		return 0
	}
	return len(p.queue)
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Stats contains pool statistics.
type Stats struct {
	// Submitted is the number of jobs accepted into the queue.
	Submitted uint64

	// Processed is the number of jobs taken off the queue.
	Processed uint64

	// Succeeded is the number of jobs that returned nil.
	Succeeded uint64

	// Failed is the number of jobs that returned an error or were skipped.
	Failed uint64

	// Panicked is the number of jobs that panicked.
	Panicked uint64

	// Dropped is the number of jobs rejected because the queue was full.
	Dropped uint64

	// TimedOut is the number of jobs that hit the job timeout.
	TimedOut uint64

	// QueueDepth is the current number of waiting jobs.
	QueueDepth int

	// AvgDuration is the average job run time.
	AvgDuration time.Duration
}

// Stats returns a snapshot of the pool statistics.
func (p *Pool) Stats() Stats {
	processed := p.processed.Load()
	var avg time.Duration
	if processed > 0 {
		avg = time.Duration(p.totalTimeNs.Load() / int64(processed))
	}
	return Stats{
		Submitted:   p.submitted.Load(),
		Processed:   processed,
		Succeeded:   p.succeeded.Load(),
		Failed:      p.failed.Load(),
		Panicked:    p.panicked.Load(),
		Dropped:     p.dropped.Load(),
		TimedOut:    p.timedOut.Load(),
		QueueDepth:  p.QueueDepth(),
		AvgDuration: avg,
	}
}
