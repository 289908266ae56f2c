package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// RedisOption configures RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix prepends prefix to every key ("{prefix}:oauth2token:{userID}").
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRedisTTL expires records after d. Zero (default) keeps them until overwritten.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = max(d, 0)
	}
}

// RedisStore keeps records as JSON strings in Redis.
// The client should come from pkg/redis.Open; its lifecycle belongs to the caller.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the record at key or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key Key) (*token.Encrypted, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec token.Encrypted
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	return &rec, nil
}

// Put stores rec as JSON.
func (s *RedisStore) Put(ctx context.Context, key Key, rec *token.Encrypted) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// Redis treats 0 as no expiration.
	return s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err()
}

// Delete removes the record at key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

func (s *RedisStore) redisKey(key Key) string {
	if s.prefix == "" {
		return key.String()
	}
	return s.prefix + ":" + key.String()
}

var _ Store = (*RedisStore)(nil)
