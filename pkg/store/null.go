package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// NullStore discards writes; every read misses.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullStore) Delete(context.Context, string) error                     { return nil }
func (NullStore) List(context.Context, string) ([]string, error)           { return nil, nil }
func (NullStore) Close() error                                             { return nil }

// MemoryStore keeps snapshots in process memory. It suits a single serve
// process whose layouts need not outlive it.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return slices.Clone(e.Data), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{Key: key, Data: slices.Clone(data), UpdatedAt: time.Now(), ExpiresAt: expiry(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// List drops expired entries as it goes.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error { return nil }

var (
	_ Store = NullStore{}
	_ Store = (*MemoryStore)(nil)
)
