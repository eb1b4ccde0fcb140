// Package diffeditor keeps a side-by-side line diff between two editors
// current while both are edited.
//
// Each side has a change detector: a memo of the editor's (identity,
// revision) key that fires only when the key changes. An effect over both
// detectors snapshots the two buffers and submits a diff job to a worker
// pool. Jobs are never cancelled when newer edits arrive. Instead every
// completion passes a gate on the runtime that compares the captured
// revisions with the buffers' current ones and publishes the result to
// both view slots only when nothing has changed since dispatch.
//
// The gate reads the left revision and then the right revision. The two
// reads are not one atomic observation of both buffers, and edits arrive
// on other goroutines, so an edit that lands after the left read can let a
// result through that is one edit behind. That edit has already fired its
// detector, so the job it scheduled replaces the result.
//
// Disposing a pairing detaches both detectors and turns any in-flight
// completion into a no-op.
package diffeditor
