// Package reactive provides the single-threaded scheduler and the explicit
// dependency graph that drive diff dispatch.
//
// A Runtime owns one goroutine and an unbounded FIFO of tasks. Everything
// that reads or writes view state runs there, so those reads and writes
// never overlap. Other goroutines hand work to it with Post.
//
// Dependencies are declared, not discovered. A Memo lists the Sources it
// reads and recomputes when any of them fires; an Effect does the same but
// produces no value. Recomputes are coalesced: any number of notifications
// that arrive before the recompute runs yield a single recompute that reads
// the latest state.
//
// Every Memo and Effect belongs to a Scope. Disposing a scope disposes its
// children, cancels the subscriptions registered with it and makes any
// queued recompute a no-op.
//
//	rt := reactive.NewRuntime()
//	rt.Start()
//	defer rt.Stop(ctx)
//
//	scope := rt.NewScope()
//	key := reactive.NewMemo(scope, readKey, buf)
//	reactive.NewEffect(scope, dispatch, key)
package reactive
