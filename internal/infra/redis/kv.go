package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV backs the result store with Redis. Values are plain strings (JSON
// arrays written by the store); an optional TTL bounds abandoned
// partitions.
type KV struct {
	client *redis.Client
	ttl    time.Duration
}

func NewKV(client *redis.Client, ttl time.Duration) *KV {
	return &KV{client: client, ttl: ttl}
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *KV) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Keys walks the keyspace with SCAN rather than KEYS so a large result
// history cannot stall the server.
func (s *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
