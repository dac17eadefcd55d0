// Package store provides the key-value document store the game state
// lives in. Documents are opaque JSON blobs; counters back sequence
// allocation. The Postgres implementation is the production store, the
// memory implementation backs tests.
package store

import "context"

// ErrNotFound is returned by Get when the key has no document.
// It is a distinct type so callers can treat absence as "create default".
type notFoundError struct{ key string }

func (e notFoundError) Error() string { return "store: key not found: " + e.key }

// IsNotFound reports whether err marks a missing key.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// NotFound returns the missing-key error for key.
func NotFound(key string) error { return notFoundError{key: key} }

// Store is a JSON document store keyed by string.
type Store interface {
	// Get returns the raw document at key, or an IsNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the document at key, creating or replacing it.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the document at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Incr atomically adds delta to the counter at key and returns the
	// new value. Absent counters start at zero.
	Incr(ctx context.Context, key string, delta int64) (int64, error)
	// Scan returns every key with the given prefix, sorted.
	Scan(ctx context.Context, prefix string) ([]string, error)
}
