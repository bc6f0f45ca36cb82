// Package metadata is a small key/value store in the client's local SQLite
// database. The auth session is persisted here between runs.
package metadata

import "context"

// Repository stores opaque values by key.
//
// Get returns common.ErrorNotFound for a missing key. Put replaces any
// existing value. Deleting a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
