package metadatastore

import (
	"context"

	"github.com/patrickmn/go-cache"

	"portfolio_dashboard/internal/app/port"
)

// MemoryStore is a process-local store; nothing survives a restart.
type MemoryStore struct {
	values *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: cache.New(cache.NoExpiration, 0)}
}

// Get implements port.MetadataStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Set implements port.MetadataStore.
func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.values.Set(key, value, cache.NoExpiration)
	return nil
}

var _ port.MetadataStore = (*MemoryStore)(nil)
