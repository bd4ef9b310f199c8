package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/feral-file/ff-registry/internal/adapter"
)

// REDIS_SCAN_COUNT is the COUNT hint of each SCAN call
const REDIS_SCAN_COUNT = 500

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

type redisStore struct {
	client adapter.RedisClient
}

// NewRedisStore creates a new Redis key-value store
func NewRedisStore(client adapter.RedisClient) KVStore {
	return &redisStore{client: client}
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *redisStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}
	return value, nil
}

// SetKeyValue stores a value under a key
func (s *redisStore) SetKeyValue(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}
	return nil
}

// DeleteKeyValue removes a key from the key-value store
func (s *redisStore) DeleteKeyValue(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete key-value: %w", err)
	}
	return nil
}

// GetAllKeyValuesByPrefix scans the key space for the prefix and fetches the values in batches.
// Keys deleted between SCAN and MGET are skipped.
func (s *redisStore) GetAllKeyValuesByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	match := globEscaper.Replace(prefix) + "*"
	result := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, REDIS_SCAN_COUNT)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			values, err := s.client.MGet(ctx, keys...)
			if err != nil {
				return nil, fmt.Errorf("failed to get key-values by prefix: %w", err)
			}
			for i, v := range values {
				if i >= len(keys) {
					break
				}
				str, ok := v.(string)
				if !ok {
					continue
				}
				result[keys[i]] = str
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

// Ping checks that Redis is reachable
func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
