package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

// WidgetStoreRepository stores raw widget payload strings in Redis.
type WidgetStoreRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewWidgetStoreRepository constructs a widget store repository.
func NewWidgetStoreRepository(client *redis.Client, logger *zap.Logger) *WidgetStoreRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WidgetStoreRepository{client: client, logger: logger}
}

// Get returns the stored string or ErrStorageMiss.
func (r *WidgetStoreRepository) Get(ctx context.Context, key string) (string, error) {
	if r.client == nil {
		return "", appErrors.ErrStorageMiss
	}
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrStorageMiss
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// MGet reads several keys in one round-trip. Absent keys come back as nil.
func (r *WidgetStoreRepository) MGet(ctx context.Context, keys ...string) ([]*string, error) {
	values := make([]*string, len(keys))
	if r.client == nil || len(keys) == 0 {
		return values, nil
	}
	raw, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget %v: %w", keys, err)
	}
	for i, item := range raw {
		if i >= len(values) {
			break
		}
		if s, ok := item.(string); ok {
			v := s
			values[i] = &v
		}
	}
	return values, nil
}

// Set stores value under key. A zero ttl keeps the key until removed.
func (r *WidgetStoreRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *WidgetStoreRepository) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (r *WidgetStoreRepository) Exists(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Ping checks connectivity for readiness probes.
func (r *WidgetStoreRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection if present.
func (r *WidgetStoreRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
