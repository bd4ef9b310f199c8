package store

import (
	"context"
)

// KVStore is the flat key-value namespace the registry is built on.
// Backends offer single-key operations only; there are no multi-key transactions
// and no read-your-writes guarantee beyond what the backend itself provides.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=KVStore=MockKVStore
type KVStore interface {
	// GetKeyValue retrieves a value by key. Returns "" when the key does not exist.
	GetKeyValue(ctx context.Context, key string) (string, error)
	// SetKeyValue stores a value under a key, replacing any previous value
	SetKeyValue(ctx context.Context, key string, value string) error
	// DeleteKeyValue removes a key. Deleting a missing key is not an error.
	DeleteKeyValue(ctx context.Context, key string) error
	// GetAllKeyValuesByPrefix retrieves all key-value pairs whose key starts with prefix
	GetAllKeyValuesByPrefix(ctx context.Context, prefix string) (map[string]string, error)
	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)
