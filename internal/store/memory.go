package store

import (
	"context"
	"strings"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an in-process key-value store.
// Contents are lost when the process exits.
func NewMemoryStore() KVStore {
	return &memoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *memoryStore) GetKeyValue(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", nil
	}
	return v.(string), nil
}

func (s *memoryStore) SetKeyValue(_ context.Context, key string, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *memoryStore) DeleteKeyValue(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *memoryStore) GetAllKeyValuesByPrefix(_ context.Context, prefix string) (map[string]string, error) {
	result := make(map[string]string)
	for k, item := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			result[k] = item.Object.(string)
		}
	}
	return result, nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}
