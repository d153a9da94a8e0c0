package storage

import "context"

// KVStore is the durable key-value store every persisted field goes
// through: the cart JSON blob, the location address, raw coordinates,
// and profile fields.
type KVStore interface {
	// Get returns the value for key and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
