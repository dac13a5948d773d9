// Package storage provides the durable key-value store behind carts,
// wishlists and order records. Each record is a single serialized blob per
// key; versioning of record contents belongs to the callers.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no record exists for the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// KV is a minimal key-value contract. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the record stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the record at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the record at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
