package initial

import (
	"context"
	"fmt"
	"time"

	"LeadForge/internal/config"
	"LeadForge/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis when configured. Redis is optional: the
// search and scrape caches degrade to no-ops without it, so a missing host or
// a failed ping returns nil rather than an error.
func NewRedisClient(conf *config.Config) *goredis.Client {
	host := conf.RedisConfig.Host
	if host == "" {
		zlog.Info("redis not configured, caching disabled")
		return nil
	}

	port := conf.RedisConfig.Port
	if port == 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.DB,
		PoolSize:     conf.RedisConfig.PoolSize,
		MinIdleConns: conf.RedisConfig.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		zlog.Error(fmt.Sprintf("redis connection failed: %v, caching disabled", err))
		_ = client.Close()
		return nil
	}

	zlog.Info("redis connected: " + addr)
	return client
}
