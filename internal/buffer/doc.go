// Package buffer provides the revisioned text buffer shared between the
// editing path and the diff engine.
//
// A Buffer wraps an immutable rope with:
//
//   - A revision counter that starts at 0 and is incremented exactly once per
//     applied edit. Revision() is a lock-free atomic load.
//   - A content identity naming which document the buffer holds.
//   - Read-only snapshots that pair the rope with the revision it was taken at.
//   - Change subscriptions, fired after every revision bump.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("a\nb\n", buffer.WithIdentity("file:/tmp/a.txt"))
//	buf.Insert(0, "x")      // revision 1
//	snap := buf.Snapshot()  // content and revision captured together
//	go func() {
//	    lines := snap.DiffLines()
//	    // compute on another goroutine, snap never changes
//	}()
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Edits take the write lock and bump the
// revision before releasing it, so a snapshot can never pair new content with
// an old revision or the reverse.
package buffer
