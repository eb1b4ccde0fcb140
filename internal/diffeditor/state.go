package diffeditor

import (
	"github.com/dshills/livediff/internal/buffer"
	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/metrics"
)

// Outcome is what the gate decided for a completed job. None of the
// non-published outcomes are errors; the next edit schedules a new job.
type Outcome int

const (
	// OutcomePublished means the result reached both view slots.
	OutcomePublished Outcome = iota

	// OutcomeStale means a side changed after the job was dispatched.
	OutcomeStale

	// OutcomeAborted means the computation gave up early.
	OutcomeAborted

	// OutcomeDisposed means the pairing was closed before completion.
	OutcomeDisposed
)

// String returns the outcome's metrics label.
func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return metrics.OutcomePublished
	case OutcomeStale:
		return metrics.OutcomeStale
	case OutcomeAborted:
		return metrics.OutcomeAborted
	case OutcomeDisposed:
		return metrics.OutcomeDisposed
	default:
		return "unknown"
	}
}

// Completion describes one gate decision. Result is nil for aborted jobs.
// Left and Right are the snapshots the job diffed.
type Completion struct {
	Pairing *DiffEditor
	Outcome Outcome
	Result  *diff.Result
	Left    *buffer.Snapshot
	Right   *buffer.Snapshot
}

// PairingState is the scheduler and gate bookkeeping of one pairing.
type PairingState struct {
	// LeftRevision and RightRevision are the revisions captured by the
	// most recent dispatch.
	LeftRevision  buffer.Revision
	RightRevision buffer.Revision

	// LastAccepted is the most recently published result, nil until the
	// first one.
	LastAccepted *diff.Result

	// Job counters.
	Dispatched uint64
	Published  uint64
	Stale      uint64
	Aborted    uint64
	Dropped    uint64
}
