// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO implementation works with any S3-compatible provider, and the
// in-memory implementation backs tests and local development.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrTooLarge is returned when an object exceeds the caller's retrieval limit.
var ErrTooLarge = errors.New("object exceeds retrieval limit")

// PutOptions carries the user metadata attached to every stored object.
type PutOptions struct {
	// ContentCategory is the item-schema category ("image", "unknown"),
	// not an HTTP media type.
	ContentCategory string
	// Public marks the object as world-readable in metadata. Nothing in
	// this service enforces it; it is a hint for downstream consumers.
	Public bool
	// DisplayName is the human-facing name the object was uploaded under.
	DisplayName string
}

// Object is one stored object's key and size, as reported by listings.
type Object struct {
	Key  string
	Size int64
}

// Page is one batch of a prefix listing. When Truncated is true, pass
// NextToken to the following List call to continue.
type Page struct {
	Objects   []Object
	NextToken string
	Truncated bool
}

// Store is the object-store collaborator the item service is built on.
// Implementations must be safe for concurrent use; no state is shared
// between calls.
type Store interface {
	// Put writes data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error

	// Get buffers the object at key into memory. When limit > 0 and the
	// object's reported size exceeds it, Get fails with ErrTooLarge before
	// reading the body. A missing object yields ErrNotFound.
	Get(ctx context.Context, key string, limit int64) ([]byte, error)

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object at key, reporting whether anything was
	// actually deleted. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) (bool, error)

	// List returns one page of keys under prefix. A non-empty token
	// continues a previous truncated listing. pageSize caps the number of
	// objects returned per call.
	List(ctx context.Context, prefix, token string, pageSize int) (Page, error)
}
