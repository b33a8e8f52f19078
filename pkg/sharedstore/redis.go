package sharedstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/tkt-widget-api/pkg/config"
)

// NewRedis returns a configured Redis client backing the widget shared storage.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Namespace builds storage keys scoped to one user's app group.
type Namespace struct {
	Prefix string
}

// Key returns "<prefix>:<userID>:<key>".
func (n Namespace) Key(userID, key string) string {
	prefix := strings.TrimSpace(n.Prefix)
	if prefix == "" {
		prefix = "widget"
	}
	return prefix + ":" + userID + ":" + key
}
