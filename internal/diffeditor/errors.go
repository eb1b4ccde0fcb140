package diffeditor

import "errors"

// Errors returned by diff editor operations.
var (
	// ErrNotFound indicates no diff editor has the given ID.
	ErrNotFound = errors.New("diff editor not found")

	// ErrDuplicate indicates a diff editor with the same ID is registered.
	ErrDuplicate = errors.New("diff editor already registered")
)
