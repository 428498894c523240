package store

import (
	"context"
	"sync"
	"time"

	"github.com/kuflow/kuflow-sdk-go/internal/metrics"
)

type collection struct {
	docs  map[string][]byte
	order []string
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Kind]*collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Kind]*collection)}
}

func (s *MemoryStore) collection(kind Kind) *collection {
	c, ok := s.collections[kind]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[kind] = c
	}
	return c
}

func (s *MemoryStore) Create(_ context.Context, kind Kind, id string, data []byte) (bool, error) {
	defer observe("create", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(kind)
	if _, exists := c.docs[id]; exists {
		return false, nil
	}
	c.docs[id] = clone(data)
	c.order = append(c.order, id)
	return true, nil
}

func (s *MemoryStore) Put(_ context.Context, kind Kind, id string, data []byte) error {
	defer observe("put", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(kind)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = clone(data)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, kind Kind, id string) ([]byte, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[kind]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(data), nil
}

func (s *MemoryStore) List(_ context.Context, kind Kind) ([][]byte, error) {
	defer observe("list", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[kind]
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.docs[id]))
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreOperation("memory", operation, time.Since(start).Seconds())
}
