package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KeyValueStore is the persistence boundary for secure values and device
// preferences. Get returns ErrNotFound for missing keys; Delete of a missing
// key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
