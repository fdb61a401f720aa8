package store

import "errors"

// Closed set of failure kinds surfaced by the gateway. Handlers branch on
// these with errors.Is; everything else is a store-level failure.
var (
	// ErrNotFound - no row exists for the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict - uniqueness or reference violation (duplicate username,
	// deleting a genre still referenced by albums).
	ErrConflict = errors.New("conflict")
	// ErrInvalid - caller-supplied fields are missing or malformed.
	ErrInvalid = errors.New("invalid input")
)
