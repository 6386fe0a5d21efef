package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dehaan/tannery/internal/redisx"
)

// RedisStore keeps session values in Redis so carts survive restarts
// and are shared across instances.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, sessionID, name string) ([]byte, error) {
	val, err := s.client.Get(ctx, redisx.SessionKey(sessionID, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, name string, value []byte) error {
	return s.client.Set(ctx, redisx.SessionKey(sessionID, name), value, redisx.SessionTTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, name string) error {
	return s.client.Del(ctx, redisx.SessionKey(sessionID, name)).Err()
}
