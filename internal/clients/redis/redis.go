// Package redis owns the service's redis connection and the pub/sub buses
// built on it: query cache invalidation and cross-instance SSE relay. Redis
// is optional; when REDIS_ADDR is unset the service runs single-instance
// with process-local caches only.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/envutil"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

const dialTimeout = 5 * time.Second

// New connects to redis using REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
// A missing REDIS_ADDR returns (nil, nil): callers treat a nil client as
// "redis not configured", not as an error.
func New(log *logger.Logger) (*goredis.Client, error) {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Info("REDIS_ADDR not set, running without redis")
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("connected to redis", "addr", addr)
	return rdb, nil
}
