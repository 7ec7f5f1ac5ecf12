package recordstore

import (
	"context"
	"fmt"
	"strings"
)

// Backend is the raw byte storage behind a Store.
//
// Implementations must be safe for concurrent use. Save must replace the
// previous value atomically from the point of view of Load.
type Backend interface {
	// Name identifies the backend in logs and metrics ("file", "sqlite", "memory").
	Name() string

	// Load returns the stored bytes for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the stored bytes for key, creating it if needed.
	Save(ctx context.Context, key string, data []byte) error

	// Close releases backend resources.
	Close() error
}

// ValidateKey reports whether key is usable by every backend.
//
// Keys are slash-separated; each segment must be non-empty and must not be
// "." or "..". Backslashes and NUL bytes are rejected outright so a key can
// never resolve outside the file backend's root.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, "\\\x00") {
		return fmt.Errorf("%w: %q contains a forbidden character", ErrInvalidKey, key)
	}
	for _, seg := range strings.Split(key, "/") {
		switch seg {
		case "", ".", "..":
			return fmt.Errorf("%w: %q has an invalid segment", ErrInvalidKey, key)
		}
	}
	return nil
}
