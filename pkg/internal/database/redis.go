package database

import (
	"context"
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewSource connects to the redis holding the user directory and makes
// sure it answers before handing the client out.
func NewSource(cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %v", cfg.Addr, err)
	}

	return client, nil
}
