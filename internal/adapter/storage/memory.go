package storage

import (
	"context"
	"slices"

	"thermacore/internal/core/domain"

	cmap "github.com/orcaman/concurrent-map"
)

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	m cmap.ConcurrentMap
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: cmap.New()}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.m.Get(key)
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return slices.Clone(v.([]byte)), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.m.Set(key, slices.Clone(value))
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
