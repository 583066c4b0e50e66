// Package cache stores extraction results keyed by content hash and proof type.
package cache

import (
	"context"
	"encoding/json"

	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// Store is the result cache the orchestrator consults before and after each
// call. Implementations must never hand out memory shared with a stored entry.
type Store interface {
	Get(ctx context.Context, key string) (entity.ExtractionResult, bool, error)
	Set(ctx context.Context, key string, r entity.ExtractionResult) error
	// Clear drops every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarizes the cache. Size is the JSON-encoded size of all entries.
type Stats struct {
	CachedEntries  int   `json:"cached_entries"`
	CacheSizeBytes int64 `json:"cache_size_bytes"`
}

func encode(r entity.ExtractionResult) ([]byte, error) {
	return json.Marshal(r)
}

func decode(b []byte) (entity.ExtractionResult, error) {
	var r entity.ExtractionResult
	err := json.Unmarshal(b, &r)
	return r, err
}
