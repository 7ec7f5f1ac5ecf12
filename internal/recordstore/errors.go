package recordstore

import "errors"

var (
	// ErrNotFound is returned by a Backend when no document exists for a key.
	ErrNotFound = errors.New("recordstore: not found")

	// ErrInvalidKey is returned when a key is empty or could escape the storage root.
	ErrInvalidKey = errors.New("recordstore: invalid key")

	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("recordstore: closed")
)
