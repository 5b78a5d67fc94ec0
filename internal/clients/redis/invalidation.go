package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

const invalidationChannel = "crm.queries.invalidate"

// InvalidationBus fans cache invalidations out to every service instance.
// A payload is a query name, or "*" for everything. Instances that receive
// a name drop it from their local tier and the shared redis tier.
type InvalidationBus struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewInvalidationBus builds a bus over an existing connection. A nil client
// yields a no-op bus, so single-instance deployments skip the round trip.
func NewInvalidationBus(rdb *goredis.Client, log *logger.Logger) *InvalidationBus {
	return &InvalidationBus{
		log: log.With("component", "redis.invalidation"),
		rdb: rdb,
	}
}

// Publish announces that a query's cached results are stale.
func (b *InvalidationBus) Publish(ctx context.Context, queryName string) error {
	if b == nil || b.rdb == nil {
		return nil
	}
	if queryName == "" {
		return fmt.Errorf("redis: empty query name")
	}
	return b.rdb.Publish(ctx, invalidationChannel, queryName).Err()
}

// StartForwarder subscribes to invalidations and calls onName for each one
// until ctx is cancelled. It returns after the subscription is confirmed.
func (b *InvalidationBus) StartForwarder(ctx context.Context, onName func(name string)) error {
	if b == nil || b.rdb == nil {
		return nil
	}
	if onName == nil {
		return fmt.Errorf("redis: onName callback required")
	}

	sub := b.rdb.Subscribe(ctx, invalidationChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				onName(m.Payload)
			}
		}
	}()
	return nil
}
