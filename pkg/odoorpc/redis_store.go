package odoorpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis as JSON under prefix+identity, so
// several replicas can share them.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store writing keys under prefix. A zero ttl
// keeps sessions until they are removed.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(identity string) string {
	return r.prefix + identity
}

func (r *RedisStore) Get(ctx context.Context, identity string) (Session, error) {
	data, err := r.client.Get(ctx, r.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("odoorpc: redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("odoorpc: decode session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Set(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("odoorpc: encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.Identity), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("odoorpc: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, r.key(identity)).Err(); err != nil {
		return fmt.Errorf("odoorpc: redis del: %w", err)
	}
	return nil
}
