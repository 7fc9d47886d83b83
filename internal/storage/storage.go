// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that were never set or were deleted
var ErrNotFound = errors.New("key not found")

// KV is the local key/value persistence used for session state
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
