package session

import (
	"context"
	"errors"
	"time"

	"github.com/craftline/backoffice/internal/application/admin"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "admin_session:"

// RedisStore keeps admin session tokens in redis with a TTL, so sessions
// survive process restarts and are shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, email, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Email(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", admin.ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
