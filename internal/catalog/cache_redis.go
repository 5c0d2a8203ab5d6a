package catalog

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const redisCacheKey = "catalog:snapshot"

// RedisCacheBackend persists the catalog snapshot in Redis so a restarted
// instance can serve immediately instead of reloading every source.
type RedisCacheBackend struct {
	client *redis.Client
}

func NewRedisCacheBackend(client *redis.Client) *RedisCacheBackend {
	return &RedisCacheBackend{client: client}
}

func (r *RedisCacheBackend) Get(ctx context.Context) (Snapshot, bool, error) {
	data, err := r.client.Get(ctx, redisCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *RedisCacheBackend) Set(ctx context.Context, snapshot Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisCacheKey, data, ttl).Err()
}

func (r *RedisCacheBackend) Delete(ctx context.Context) error {
	return r.client.Del(ctx, redisCacheKey).Err()
}

func (r *RedisCacheBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
