package annotation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces result keys.
const DefaultRedisPrefix = "tagqa:results"

// RedisStore keeps each record as a plain string value without expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// keyEscaper percent-encodes ':' (and '%' itself) inside key components.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// redisKey builds prefix:user:tag:track. Components are escaped, so tag
// "a:b" with track "c" and tag "a" with track "b:c" get distinct keys.
func (s *RedisStore) redisKey(key Key) string {
	return s.prefix + ":" + key.User + ":" + keyEscaper.Replace(key.Tag) + ":" + keyEscaper.Replace(key.Track)
}

// Location implements Locator.
func (s *RedisStore) Location(key Key) string {
	return "redis://" + s.redisKey(key)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.redisKey(key), err)
	}
	return data, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key Key, data []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.redisKey(key), err)
	}
	return nil
}
