// Package rope provides an immutable rope for buffer text storage.
//
// A rope is a height-balanced binary tree whose leaves hold bounded text
// chunks. Every internal node caches the byte and newline counts of its
// subtree, so offset and line lookups are O(log n).
//
// Key features:
//   - Edits return new ropes; the original is never modified
//   - Unchanged subtrees are shared between versions, so keeping an old
//     version around (a snapshot) costs nothing but a pointer
//   - Safe for concurrent reads from any goroutine
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r = r.Insert(5, ",")    // "hello, world"
//	r = r.Delete(0, 7)      // "world"
//	old := r                // cheap snapshot
//	r = r.Insert(0, "new ") // old still reads "world"
package rope
