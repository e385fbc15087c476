package repository

import "context"

// KVStore is the durable persistence boundary. Values are opaque text
// payloads keyed by well-known names; implementations live under
// internal/infrastructure/kvstore.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value, replacing any previous one.
	Set(ctx context.Context, key, value string) error
}
