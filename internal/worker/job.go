package worker

import (
	"context"
	"runtime/debug"
	"time"
)

// Job is a unit of background work.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) error

// Run calls f.
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// PanicHandler is called when a job panics. It receives the job, the panic
// value and the stack trace.
type PanicHandler func(job Job, panicValue any, stack []byte)

func defaultPanicHandler(Job, any, []byte) {}

// Result describes one job execution.
type Result struct {
	// Error is the error returned by the job, if any.
	Error error

	// Panicked is true if the job panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// Duration is how long the job ran.
	Duration time.Duration

	// Skipped is true if the job never ran because its context was done.
	Skipped bool
}

// Succeeded returns true if the job ran to completion without error.
func (r Result) Succeeded() bool {
	return !r.Skipped && !r.Panicked && r.Error == nil
}

// execute runs job with panic recovery and timing.
func execute(ctx context.Context, job Job, onPanic PanicHandler) (result Result) {
	if err := ctx.Err(); err != nil {
		return Result{Error: err, Skipped: true}
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()
			result.Panicked = true
			result.PanicValue = r

			// A panicking handler must not crash the worker either.
			if onPanic != nil {
				func() {
					defer func() { _ = recover() }()
					onPanic(job, r, stack)
				}()
			}
		}
	}()

	result.Error = job.Run(ctx)
	return result
}

// executeWithTimeout runs job under a deadline. The job must honor ctx for
// the deadline to take effect.
func executeWithTimeout(ctx context.Context, job Job, onPanic PanicHandler, timeout time.Duration) Result {
	if timeout <= 0 {
		return execute(ctx, job, onPanic)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return execute(ctx, job, onPanic)
}
