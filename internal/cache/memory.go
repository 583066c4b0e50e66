package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

const defaultMaxEntries = 1024

// MemoryStore is a bounded LRU with a per-entry TTL. Entries are kept in
// encoded form, so every Get decodes a fresh copy.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryStore creates an LRU holding at most maxEntries results for ttl
// each. A non-positive ttl disables expiry.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (entity.ExtractionResult, bool, error) {
	raw, ok := s.lru.Get(key)
	if !ok {
		return entity.ExtractionResult{}, false, nil
	}
	r, err := decode(raw)
	if err != nil {
		return entity.ExtractionResult{}, false, fmt.Errorf("memory cache decode: %w", err)
	}
	return r, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, r entity.ExtractionResult) error {
	raw, err := encode(r)
	if err != nil {
		return fmt.Errorf("memory cache encode: %w", err)
	}
	s.lru.Add(key, raw)
	return nil
}

// Clear reports how many live entries were dropped.
func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	n := len(s.lru.Values())
	s.lru.Purge()
	return n, nil
}

// Stats counts live entries only.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	var st Stats
	for _, raw := range s.lru.Values() {
		st.CachedEntries++
		st.CacheSizeBytes += int64(len(raw))
	}
	return st, nil
}
