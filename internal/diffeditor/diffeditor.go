package diffeditor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/editor"
	"github.com/dshills/livediff/internal/reactive"
	"github.com/dshills/livediff/internal/view"
	"github.com/dshills/livediff/internal/worker"
)

// DiffEditor pairs two editors under continuous diff comparison.
type DiffEditor struct {
	id     uuid.UUID
	cfg    config
	parent *reactive.Scope
	scope  *reactive.Scope
	rt     *reactive.Runtime
	pool   Submitter
	logger *zap.Logger

	left  *editor.Editor
	right *editor.Editor

	leftKey  *reactive.Memo[editor.Key]
	rightKey *reactive.Memo[editor.Key]

	// ctx is cancelled on dispose so running jobs stop early.
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state PairingState

	// life guards closed. The gate holds it from its liveness check until
	// both slots are written.
	life   sync.Mutex
	closed bool
}

// New creates a pairing of left and right in a child of parent. Either
// document may be nil or still loading; no diff is scheduled until both
// sides are available.
func New(parent *reactive.Scope, pool Submitter, left, right *document.Document, opts ...Option) *DiffEditor {
	cfg := newConfig(opts)
	return newDiffEditor(parent, pool, cfg, func(scope *reactive.Scope) (*editor.Editor, *editor.Editor) {
		return editor.New(scope, left), editor.New(scope, right)
	})
}

func newDiffEditor(
	parent *reactive.Scope,
	pool Submitter,
	cfg config,
	editors func(*reactive.Scope) (*editor.Editor, *editor.Editor),
) *DiffEditor {
	scope := parent.Child()
	ctx, cancel := context.WithCancel(context.Background())
	d := &DiffEditor{
		id:     uuid.New(),
		cfg:    cfg,
		parent: parent,
		scope:  scope,
		rt:     scope.Runtime(),
		pool:   pool,
		ctx:    ctx,
		cancel: cancel,
	}
	d.logger = cfg.logger.Named("diffeditor").With(zap.Stringer("pairing", d.id))
	scope.OnDispose(cancel)

	d.left, d.right = editors(scope)
	d.leftKey = reactive.NewMemo(scope, d.left.Key, d.left)
	d.rightKey = reactive.NewMemo(scope, d.right.Key, d.right)
	reactive.NewEffect(scope, d.schedule, d.leftKey, d.rightKey)

	cfg.metrics.PairingOpened()
	scope.OnDispose(cfg.metrics.PairingClosed)
	// Registered last so it runs first when a parent scope is disposed.
	scope.OnDispose(d.close)
	return d
}

// ID returns the pairing's unique ID.
func (d *DiffEditor) ID() uuid.UUID {
	return d.id
}

// TabID returns the tab the pairing belongs to.
func (d *DiffEditor) TabID() uuid.UUID {
	return d.cfg.tabID
}

// Left returns the left editor.
func (d *DiffEditor) Left() *editor.Editor {
	return d.left
}

// Right returns the right editor.
func (d *DiffEditor) Right() *editor.Editor {
	return d.right
}

// Alive reports whether the pairing is still open.
func (d *DiffEditor) Alive() bool {
	d.life.Lock()
	defer d.life.Unlock()
	return !d.closed && d.scope.Alive()
}

// State returns a copy of the pairing's bookkeeping.
func (d *DiffEditor) State() PairingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dispose closes the pairing. Once it returns no result is published and
// both views show view.Normal. Jobs still running complete without effect.
// The editors detach from their documents on the runtime, or right away if
// the runtime is stopped.
func (d *DiffEditor) Dispose() {
	d.cancel()
	d.close()
	if !d.rt.Post(d.scope.Dispose) {
		d.scope.Dispose()
	}
}

// close marks the pairing closed and clears both views. It waits for a gate
// that is publishing.
func (d *DiffEditor) close() {
	d.life.Lock()
	defer d.life.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.left.View().Set(view.Normal{})
	d.right.View().Set(view.Normal{})
}

// schedule runs on the runtime whenever either change detector fires.
func (d *DiffEditor) schedule() {
	if !d.leftKey.Get().Available || !d.rightKey.Get().Available {
		return
	}
	leftDoc, rightDoc := d.left.Document(), d.right.Document()
	if leftDoc == nil || rightDoc == nil {
		return
	}

	j := &job{
		d:        d,
		leftDoc:  leftDoc,
		rightDoc: rightDoc,
		leftBuf:  leftDoc.Buffer(),
		rightBuf: rightDoc.Buffer(),
	}
	j.left = j.leftBuf.Snapshot()
	j.right = j.rightBuf.Snapshot()

	d.mu.Lock()
	d.state.LeftRevision = j.left.Revision()
	d.state.RightRevision = j.right.Revision()
	d.mu.Unlock()

	if err := d.pool.Submit(d.ctx, j); err != nil {
		d.mu.Lock()
		d.state.Dropped++
		d.mu.Unlock()
		d.cfg.metrics.Dropped()

		level := zap.WarnLevel
		if errors.Is(err, worker.ErrNotRunning) {
			level = zap.DebugLevel
		}
		d.logger.Log(level, "diff job not dispatched", zap.Error(err))
		return
	}

	d.mu.Lock()
	d.state.Dispatched++
	d.mu.Unlock()
	d.cfg.metrics.Dispatched()
	d.logger.Debug("diff job dispatched",
		zap.Uint64("left_revision", j.left.Revision()),
		zap.Uint64("right_revision", j.right.Revision()),
	)
}
