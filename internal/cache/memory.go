// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/citeverify/pkg/types"
)

// entry is the serialized form shared by the memory and Redis stores.
type entry struct {
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"created_at"`
	QueryType  string          `json:"query_type"`
	QueryValue string          `json:"query_value"`
}

func newEntry(queryType, value string, r *types.VerificationResult, now time.Time) (entry, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return entry{}, fmt.Errorf("encoding cache entry: %w", err)
	}
	return entry{
		Result:     data,
		CreatedAt:  now,
		QueryType:  queryType,
		QueryValue: truncate(value, maxQueryValue),
	}, nil
}

func (e entry) result() (*types.VerificationResult, error) {
	return decodeResult(e.Result)
}

// decodeResult parses a stored result. Entries with an unknown status are
// reported as corrupt so the caller falls through to a live query.
func decodeResult(data []byte) (*types.VerificationResult, error) {
	var r types.VerificationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("decoding cache entry: unknown status %q", r.Status)
	}
	return &r, nil
}

// MemoryStore is a process-local Store. Results are stored serialized so
// a hit never aliases the caller's value.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	opts    options
}

// NewMemory returns an empty MemoryStore.
func NewMemory(opts ...Option) *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}, opts: buildOptions(opts)}
}

func (m *MemoryStore) Get(_ context.Context, queryType, value string) (*types.VerificationResult, error) {
	m.mu.Lock()
	e, ok := m.entries[Key(queryType, value)]
	m.mu.Unlock()
	if !ok || m.opts.expired(e.CreatedAt) {
		return nil, ErrMiss
	}
	return e.result()
}

func (m *MemoryStore) Set(_ context.Context, queryType, value string, r *types.VerificationResult) error {
	if !cacheable(r) {
		return nil
	}
	e, err := newEntry(queryType, value, r, m.opts.clock())
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[Key(queryType, value)] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = map[string]entry{}
	return n, nil
}

func (m *MemoryStore) ClearExpired(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if m.opts.expired(e.CreatedAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{ByType: map[string]int{}, Location: "memory", TTL: m.opts.ttl}
	for _, e := range m.entries {
		st.Total++
		if !m.opts.expired(e.CreatedAt) {
			st.Valid++
		}
		st.ByType[e.QueryType]++
	}
	st.Expired = st.Total - st.Valid
	return st, nil
}

func (m *MemoryStore) Close() error { return nil }
