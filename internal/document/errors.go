package document

import "errors"

// Sentinel errors for the document package.
var (
	// ErrDocumentNotFound is returned when a document ID is unknown.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidDescriptor is returned for descriptors missing required fields.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrAlreadyWatching is returned when WatchFiles is already running.
	ErrAlreadyWatching = errors.New("already watching files")
)
