// Package cache backs the session manager with Redis so access tokens
// survive server restarts and expire on their own.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/playvault/server/session"
)

const sessionKeyPrefix = "session:"

// RedisStore implements session.Store on a Redis client. Keys are
// "session:<token>" with TTL equal to the configured session lifetime.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sess.Token, payload, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, token string) (*session.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess := &session.Session{}
	if err := json.Unmarshal(payload, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
