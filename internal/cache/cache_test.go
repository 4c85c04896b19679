// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeverify/pkg/types"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// backends builds one store of each kind sharing clk.
func backends(t *testing.T, clk *fakeClock) map[string]Store {
	t.Helper()
	opts := []Option{WithTTL(time.Hour), WithClock(clk.Now)}

	sqlite, err := OpenSQLite(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rs := NewRedis(client, mr.Addr(), "test:", opts...)
	t.Cleanup(func() { rs.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"redis":  rs,
		"memory": NewMemory(opts...),
	}
}

func verified() *types.VerificationResult {
	return &types.VerificationResult{
		Status:          types.StatusVerified,
		Confidence:      1.0,
		MatchedTitle:    "Attention Is All You Need",
		MatchedYear:     2017,
		DOI:             "10.1234/test",
		VerifiedSources: []string{"crossref"},
		Discrepancies:   []string{},
		Metadata:        map[string]any{"citation_count": 42, "type": "journal-article"},
	}
}

func TestKey(t *testing.T) {
	k := Key("doi", "10.1234/ABC")
	assert.Len(t, k, 32)
	assert.Equal(t, k, Key("doi", "  10.1234/abc "), "case and surrounding space are ignored")
	assert.NotEqual(t, k, Key("title", "10.1234/abc"), "query type is part of the key")
	assert.NotEqual(t, k, Key("doi", "10.1234/abd"))
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, newClock()) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, QueryDOI, "10.1234/test")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, s.Set(ctx, QueryDOI, "10.1234/test", verified()))

			got, err := s.Get(ctx, QueryDOI, "10.1234/TEST")
			require.NoError(t, err)
			assert.Equal(t, types.StatusVerified, got.Status)
			assert.Equal(t, 1.0, got.Confidence)
			assert.Equal(t, "Attention Is All You Need", got.MatchedTitle)
			assert.Equal(t, []string{"crossref"}, got.VerifiedSources)
			assert.EqualValues(t, 42, got.Metadata["citation_count"])

			_, err = s.Get(ctx, QueryTitle, "10.1234/test")
			assert.ErrorIs(t, err, ErrMiss, "same value under another type misses")
		})
	}
}

func TestStoreNeverCachesErrors(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, newClock()) {
		t.Run(name, func(t *testing.T) {
			r := &types.VerificationResult{
				Status:        types.StatusError,
				Discrepancies: []string{"CrossRef timeout"},
			}
			require.NoError(t, s.Set(ctx, QueryDOI, "10.1/err", r))
			_, err := s.Get(ctx, QueryDOI, "10.1/err")
			assert.ErrorIs(t, err, ErrMiss)

			st, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, st.Total)
		})
	}
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	for name, s := range backends(t, clk) {
		t.Run(name, func(t *testing.T) {
			start := clk.now
			t.Cleanup(func() { clk.now = start })

			require.NoError(t, s.Set(ctx, QueryArxiv, "1706.03762", verified()))

			clk.Advance(59 * time.Minute)
			_, err := s.Get(ctx, QueryArxiv, "1706.03762")
			assert.NoError(t, err, "entry is valid before the TTL elapses")

			clk.Advance(time.Minute)
			_, err = s.Get(ctx, QueryArxiv, "1706.03762")
			assert.ErrorIs(t, err, ErrMiss, "entry expires once the TTL has elapsed")
		})
	}
}

func TestStoreAdministration(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	for name, s := range backends(t, clk) {
		t.Run(name, func(t *testing.T) {
			start := clk.now
			t.Cleanup(func() { clk.now = start })

			require.NoError(t, s.Set(ctx, QueryDOI, "10.1/old", verified()))
			require.NoError(t, s.Set(ctx, QueryTitle, "old title", verified()))
			clk.Advance(2 * time.Hour)
			require.NoError(t, s.Set(ctx, QueryDOI, "10.1/new", verified()))

			st, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, st.Total)
			assert.Equal(t, 1, st.Valid)
			assert.Equal(t, 2, st.Expired)
			assert.Equal(t, map[string]int{QueryDOI: 2, QueryTitle: 1}, st.ByType)
			assert.Equal(t, time.Hour, st.TTL)
			assert.NotEmpty(t, st.Location)

			n, err := s.ClearExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = s.Get(ctx, QueryDOI, "10.1/new")
			assert.NoError(t, err, "valid entry survives pruning")

			n, err = s.Clear(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			st, err = s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, st.Total)
		})
	}
}

func TestSQLiteTruncatesQueryValue(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	long := strings.Repeat("a", 800)
	require.NoError(t, s.Set(ctx, QueryTitle, long, verified()))

	var stored string
	require.NoError(t, s.db.QueryRow(`SELECT query_value FROM verification_cache`).Scan(&stored))
	assert.Len(t, stored, maxQueryValue)

	_, err = s.Get(ctx, QueryTitle, long)
	assert.NoError(t, err, "key uses the full value")
}

func TestSQLiteCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, QueryDOI, "10.1/bad", verified()))
	_, err = s.db.Exec(`UPDATE verification_cache SET result_json = '{"status":"bogus"}'`)
	require.NoError(t, err)

	_, err = s.Get(ctx, QueryDOI, "10.1/bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestSQLiteReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, QueryDOI, "10.1/persist", verified()))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dir)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(ctx, QueryDOI, "10.1/persist")
	assert.NoError(t, err)
	assert.Equal(t, dir+"/cache.db", s.Path())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.CacheConfig{Backend: types.CacheNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, types.CacheConfig{Backend: types.CacheMemory, TTL: time.Minute})
	require.NoError(t, err)
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, st.TTL)

	s, err = Open(ctx, types.CacheConfig{Backend: types.CacheSQLite, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	mr := miniredis.RunT(t)
	s, err = Open(ctx, types.CacheConfig{Backend: types.CacheRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	s.Close()

	_, err = Open(ctx, types.CacheConfig{Backend: "bogus"})
	assert.Error(t, err)
}
