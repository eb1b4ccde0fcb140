package diffeditor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/buffer"
	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/view"
)

// job computes one diff off the runtime. The captured snapshots carry the
// revisions the gate validates against.
type job struct {
	d *DiffEditor

	leftDoc, rightDoc *document.Document
	leftBuf, rightBuf *buffer.Buffer
	left, right       *buffer.Snapshot
}

// Run implements worker.Job.
func (j *job) Run(ctx context.Context) error {
	opts := j.d.cfg.opts
	opts.Stale = func() bool {
		return ctx.Err() != nil || j.rightBuf.Revision() != j.right.Revision()
	}

	start := time.Now()
	r, ok := diff.Compute(j.left, j.right, opts)
	j.d.cfg.metrics.ObserveCompute(time.Since(start))
	if !ok {
		r = nil
	}

	if !j.d.rt.Post(func() { j.d.complete(j, r) }) {
		j.d.cfg.metrics.Result(OutcomeDisposed.String())
	}
	return nil
}

// complete runs the gate on the runtime and records its decision.
func (d *DiffEditor) complete(j *job, r *diff.Result) {
	o := d.gate(j, r)

	d.mu.Lock()
	switch o {
	case OutcomePublished:
		d.state.Published++
	case OutcomeStale:
		d.state.Stale++
	case OutcomeAborted:
		d.state.Aborted++
	}
	d.mu.Unlock()

	d.cfg.metrics.Result(o.String())
	if o != OutcomePublished {
		d.logger.Debug("diff result discarded",
			zap.Stringer("outcome", o),
			zap.Uint64("left_revision", j.left.Revision()),
			zap.Uint64("right_revision", j.right.Revision()),
		)
	}
	if d.cfg.onGate != nil && o != OutcomeDisposed {
		d.cfg.onGate(Completion{Pairing: d, Outcome: o, Result: r, Left: j.left, Right: j.right})
	}
}

// gate publishes r to both view slots if the pairing is alive and neither
// side changed since j was dispatched.
func (d *DiffEditor) gate(j *job, r *diff.Result) Outcome {
	d.life.Lock()
	defer d.life.Unlock()

	if d.closed || !d.scope.Alive() {
		return OutcomeDisposed
	}
	if r == nil {
		return OutcomeAborted
	}
	if j.leftBuf.Revision() != j.left.Revision() {
		return OutcomeStale
	}
	if j.rightBuf.Revision() != j.right.Revision() {
		return OutcomeStale
	}
	if d.left.Document() != j.leftDoc || d.right.Document() != j.rightDoc {
		return OutcomeStale
	}

	d.left.View().Set(view.Diff{IsRight: false, Changes: r})
	d.right.View().Set(view.Diff{IsRight: true, Changes: r})

	d.mu.Lock()
	d.state.LastAccepted = r
	d.mu.Unlock()
	return OutcomePublished
}
