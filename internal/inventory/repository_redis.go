package inventory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores blobs as plain Redis strings.
type RedisKV struct {
	client redis.UniversalClient
}

// NewRedisKV wraps a Redis client.
func NewRedisKV(client redis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

// Load fetches keys with MGET.
func (r *RedisKV) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("inventory: redis mget: %w", err)
	}
	for i, v := range values {
		switch val := v.(type) {
		case nil:
		case string:
			out[keys[i]] = []byte(val)
		default:
			return nil, fmt.Errorf("inventory: redis key %s: unexpected %T", keys[i], v)
		}
	}
	return out, nil
}

// Save writes every blob inside one MULTI/EXEC.
func (r *RedisKV) Save(ctx context.Context, blobs map[string][]byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range blobs {
			pipe.Set(ctx, k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("inventory: redis save: %w", err)
	}
	return nil
}
