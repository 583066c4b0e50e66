package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

func sampleResult() entity.ExtractionResult {
	f := entity.NewFields("job_title", "company")
	f.Set("job_title", "Engineer")
	return entity.ExtractionResult{
		ProofType:           constants.ProofJob,
		Fields:              f,
		Confidence:          entity.Confidence{"job_title": 0.9},
		NeedsReview:         true,
		LowConfidenceFields: []string{"company"},
	}
}

func TestMemoryStoreRoundTripReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Hour)

	require.NoError(t, s.Set(ctx, "k", sampleResult()))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	got.Fields.Set("job_title", "mutated")
	got.Confidence["job_title"] = 0
	got.LowConfidenceFields[0] = "mutated"

	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), again)
}

func TestMemoryStoreMiss(t *testing.T) {
	_, ok, err := NewMemoryStore(1, 0).Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 0)

	require.NoError(t, s.Set(ctx, "a", sampleResult()))
	require.NoError(t, s.Set(ctx, "b", sampleResult()))
	_, ok, _ := s.Get(ctx, "a") // a becomes most recent
	require.True(t, ok)
	require.NoError(t, s.Set(ctx, "c", sampleResult()))

	_, okA, _ := s.Get(ctx, "a")
	_, okB, _ := s.Get(ctx, "b")
	_, okC, _ := s.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, 150*time.Millisecond)

	require.NoError(t, s.Set(ctx, "k", sampleResult()))
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok, _ := s.Get(ctx, "k")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.CachedEntries)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreEvictionKeepsNewestWithinBound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3, time.Hour)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Set(ctx, k, sampleResult()))
	}

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CachedEntries)

	for k, want := range map[string]bool{"a": false, "b": false, "c": true, "d": true, "e": true} {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want, ok, k)
	}
}

func TestMemoryStoreStatsAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, 0)
	require.NoError(t, s.Set(ctx, "a", sampleResult()))
	require.NoError(t, s.Set(ctx, "b", sampleResult()))
	require.NoError(t, s.Set(ctx, "b", sampleResult()))

	raw, err := encode(sampleResult())
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CachedEntries)
	assert.Equal(t, int64(2*len(raw)), st.CacheSizeBytes)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "test:", TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", sampleResult()))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Hour, mr.TTL("test:k"))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	mr.FastForward(2 * time.Hour)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreStatsAndClearOnlyTouchPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("other:key", "keep me"))
	require.NoError(t, s.Set(ctx, "a", sampleResult()))
	require.NoError(t, s.Set(ctx, "b", sampleResult()))

	raw, err := encode(sampleResult())
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CachedEntries)
	assert.Equal(t, int64(2*len(raw)), st.CacheSizeBytes)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists("test:a"))
}

func TestNewRedisStoreFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	assert.Error(t, err)
}
