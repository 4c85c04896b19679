// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes verification results keyed by query identity.
// An entry is valid while now - createdAt < ttl. Results with status
// error are never stored.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/citeverify/pkg/types"
)

// Query types used as the first half of a cache key.
const (
	QueryDOI   = "doi"
	QueryArxiv = "arxiv"
	QueryTitle = "title"
)

// DefaultTTL is how long an entry stays valid when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// maxQueryValue bounds the stored query value; the key is computed from
// the full value.
const maxQueryValue = 500

// ErrMiss is returned by Get when no valid entry exists.
var ErrMiss = errors.New("cache miss")

// ErrUnknownBackend is returned by Open for a backend name it does not know.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is the result cache contract. Get returns ErrMiss for absent or
// expired entries. Set ignores results with status error.
type Store interface {
	Get(ctx context.Context, queryType, value string) (*types.VerificationResult, error)
	Set(ctx context.Context, queryType, value string, r *types.VerificationResult) error
	Clear(ctx context.Context) (int, error)
	ClearExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes a store's contents.
type Stats struct {
	Total    int            `json:"total_entries" yaml:"total_entries"`
	Valid    int            `json:"valid_entries" yaml:"valid_entries"`
	Expired  int            `json:"expired_entries" yaml:"expired_entries"`
	ByType   map[string]int `json:"by_type" yaml:"by_type"`
	Location string         `json:"location" yaml:"location"`
	TTL      time.Duration  `json:"ttl" yaml:"ttl"`
}

// Key hashes a query into its cache key: the first 32 hex characters of
// sha256("type:value") with value lowercased and trimmed.
func Key(queryType, value string) string {
	sum := sha256.Sum256([]byte(queryType + ":" + strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(sum[:])[:32]
}

// Clock returns the current time. Stores take one so tests can move time.
type Clock func() time.Time

// Option configures a store.
type Option func(*options)

type options struct {
	ttl   time.Duration
	clock Clock
}

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) expired(createdAt time.Time) bool {
	return o.clock().Sub(createdAt) >= o.ttl
}

func cacheable(r *types.VerificationResult) bool {
	return r != nil && r.Status != types.StatusError
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// DefaultDir returns ~/.citeverify, or ./.citeverify when the home
// directory is unavailable or not writable.
func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".citeverify")
		if os.MkdirAll(dir, 0o755) == nil {
			return dir
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".citeverify"
	}
	return filepath.Join(wd, ".citeverify")
}

// Open builds the store selected by cfg. Backend "none" returns a nil
// Store, which callers treat as caching disabled.
func Open(ctx context.Context, cfg types.CacheConfig, opts ...Option) (Store, error) {
	if cfg.TTL > 0 {
		opts = append([]Option{WithTTL(cfg.TTL)}, opts...)
	}
	switch cfg.Backend {
	case types.CacheSQLite, "":
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultDir()
		}
		s, err := OpenSQLite(dir, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.CacheRedis:
		s, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.CacheMemory:
		return NewMemory(opts...), nil
	case types.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, cfg.Backend)
	}
}
