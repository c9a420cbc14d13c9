package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rryowa/candidate_session/internal/storage"
)

// KeyValueStore keeps values in Redis under prefix+key with no expiry.
type KeyValueStore struct {
	client *redis.Client
	prefix string
}

func NewKeyValueStore(client *redis.Client, prefix string) *KeyValueStore {
	return &KeyValueStore{client: client, prefix: prefix}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
