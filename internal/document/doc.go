// Package document resolves content descriptors into shared, editable
// documents.
//
// A Descriptor names where content comes from: a file on disk, a scratch
// buffer, or a historical version of a file. The Manager turns descriptors
// into Documents. File documents are shared by absolute path, so two diff
// sides that name the same file edit the same buffer.
//
// A Document that is still loading is unavailable; diffing waits for it.
// WatchFiles reloads file documents when they change on disk, which bumps
// the buffer revision like any other edit.
package document
