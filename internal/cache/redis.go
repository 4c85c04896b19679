// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/citeverify/pkg/types"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "citeverify:"

// RedisStore keeps entries in Redis so several runs or machines share one
// cache. Entries carry a Redis expiry equal to the TTL and are also
// checked against their stored creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
	addr   string
	opts   options
}

// OpenRedis connects to addr and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, prefix string, opts ...Option) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedis(client, addr, prefix, opts...), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, addr, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, addr: addr, opts: buildOptions(opts)}
}

func (s *RedisStore) key(queryType, value string) string {
	return s.prefix + Key(queryType, value)
}

func (s *RedisStore) Get(ctx context.Context, queryType, value string) (*types.VerificationResult, error) {
	raw, err := s.client.Get(ctx, s.key(queryType, value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if s.opts.expired(e.CreatedAt) {
		return nil, ErrMiss
	}
	return e.result()
}

func (s *RedisStore) Set(ctx context.Context, queryType, value string, r *types.VerificationResult) error {
	if !cacheable(r) {
		return nil
	}
	e, err := newEntry(queryType, value, r, s.opts.clock())
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.key(queryType, value), data, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// scan returns every key under the store's prefix.
func (s *RedisStore) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning cache keys: %w", err)
	}
	return keys, nil
}

// entries loads the entries stored under keys, skipping keys that
// vanished or hold undecodable values.
func (s *RedisStore) entries(ctx context.Context, keys []string) (map[string]entry, error) {
	out := make(map[string]entry, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cache entries: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var e entry
		if json.Unmarshal([]byte(str), &e) == nil {
			out[keys[i]] = e
		}
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) ClearExpired(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	es, err := s.entries(ctx, keys)
	if err != nil {
		return 0, err
	}
	var expired []string
	for k, e := range es {
		if s.opts.expired(e.CreatedAt) {
			expired = append(expired, k)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, expired...).Result()
	if err != nil {
		return 0, fmt.Errorf("clearing expired entries: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByType: map[string]int{}, Location: "redis://" + s.addr + "/" + s.prefix, TTL: s.opts.ttl}
	keys, err := s.scan(ctx)
	if err != nil {
		return Stats{}, err
	}
	es, err := s.entries(ctx, keys)
	if err != nil {
		return Stats{}, err
	}
	for _, e := range es {
		st.Total++
		if !s.opts.expired(e.CreatedAt) {
			st.Valid++
		}
		st.ByType[e.QueryType]++
	}
	st.Expired = st.Total - st.Valid
	return st, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
