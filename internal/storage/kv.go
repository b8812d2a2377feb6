package storage

import "context"

// KV is the minimal key-value surface the result store runs on. Memory and
// Redis implementations live under internal/infra.
type KV interface {
	// Get returns the raw value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys enumerates every key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
