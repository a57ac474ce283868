// Package kv provides the persisted key-value store backing the speaker
// registry. Keys are hierarchical paths represented as string slices
// (e.g. ["speaker", "recording", "rec-42"]) joined with ':' on disk.
//
// The BadgerDB implementation is used in production; the in-memory
// implementation serves tests and ephemeral runs.
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path represented as a slice of string segments.
// Segments must not contain ':'.
type Key []string

// String returns the encoded key form.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List returns all entries whose key starts with the given prefix,
	// in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) ([]Entry, error)

	// Close releases any resources held by the store.
	Close() error
}

// encode converts a Key to its stored byte form.
func encode(k Key) []byte {
	return []byte(k.String())
}

// decode converts a stored byte form back to a Key.
func decode(b []byte) Key {
	return Key(strings.Split(string(b), ":"))
}
