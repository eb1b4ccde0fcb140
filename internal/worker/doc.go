// Package worker runs diff jobs off the editing path.
//
// A Pool is a fixed set of goroutines draining a bounded queue. Submission
// never blocks: when the queue is full Submit returns ErrQueueFull and the
// job is dropped. Jobs carry no ordering or priority guarantees; two jobs
// submitted back to back may complete in either order.
//
// # Panic Recovery
//
// A panicking job does not take its worker down. The panic is reported to
// the configured PanicHandler together with the stack and counted in Stats.
//
// # Usage
//
//	pool := worker.NewPool(worker.WithWorkers(4), worker.WithQueueSize(256))
//	if err := pool.Start(); err != nil {
//	    return err
//	}
//	defer pool.Stop(ctx)
//
//	err := pool.Submit(ctx, worker.JobFunc(func(ctx context.Context) error {
//	    return compute(ctx)
//	}))
package worker
