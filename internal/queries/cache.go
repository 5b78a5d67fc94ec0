// Package queries is the CRM's named-query catalog: every binding name a
// layout document may reference, implemented as a cached read over the
// repos. Results flow through two tiers - a process-local TTL cache and,
// when configured, a shared redis tier - with a redis channel fanning
// invalidations out to every instance.
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

var tracer = otel.Tracer("crm-backend/queries")

const (
	cacheKeyPrefix  = "layoutq:"
	defaultCacheTTL = 30 * time.Second
	cleanupInterval = 5 * time.Minute
)

// Cache is the read-through tier in front of query fetches. The local tier
// holds Go values; the redis tier holds JSON, so a hit there comes back as
// decoded generic data, which is all the render path needs.
type Cache struct {
	local *gocache.Cache
	rdb   *goredis.Client
	log   *logger.Logger
}

// NewCache builds the cache. rdb may be nil for local-only operation.
func NewCache(rdb *goredis.Client, log *logger.Logger) *Cache {
	return &Cache{
		local: gocache.New(defaultCacheTTL, cleanupInterval),
		rdb:   rdb,
		log:   log.With("component", "queries.cache"),
	}
}

// Do returns the cached value for (name, key) or runs fetch and stores the
// result in both tiers. Fetch errors are never cached.
func (c *Cache) Do(ctx context.Context, name, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cacheKey := cacheKeyPrefix + name + ":" + key

	if v, ok := c.local.Get(cacheKey); ok {
		return v, nil
	}
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var v any
			if jerr := json.Unmarshal(raw, &v); jerr == nil {
				c.local.Set(cacheKey, v, ttl)
				return v, nil
			}
		}
	}

	fetchCtx, span := tracer.Start(ctx, "query.fetch",
		trace.WithAttributes(attribute.String("query.name", name)))
	v, err := fetch(fetchCtx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	span.End()

	c.local.Set(cacheKey, v, ttl)
	if c.rdb != nil {
		if raw, jerr := json.Marshal(v); jerr == nil {
			if rerr := c.rdb.Set(ctx, cacheKey, raw, ttl).Err(); rerr != nil {
				c.log.Warn("redis cache write failed", "key", cacheKey, "error", rerr)
			}
		}
	}
	return v, nil
}

// Invalidate drops every cached result for a query name, in both tiers.
// An empty name or "*" drops everything.
func (c *Cache) Invalidate(ctx context.Context, name string) {
	prefix := cacheKeyPrefix
	if name != "" && name != "*" {
		prefix += name + ":"
	}

	for key := range c.local.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.local.Delete(key)
		}
	}

	if c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("redis cache scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("redis cache delete failed", "keys", len(keys), "error", err)
		}
	}
}

// InvalidateLocal drops only the process-local tier, used when an
// invalidation arrives over the bus (the publisher already cleared redis).
func (c *Cache) InvalidateLocal(name string) {
	prefix := cacheKeyPrefix
	if name != "" && name != "*" {
		prefix += name + ":"
	}
	for key := range c.local.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.local.Delete(key)
		}
	}
}

// paramsKey derives a stable cache key from the request scope. Only fields
// a query actually varies on belong in its key, so each query builds its
// own; this helper hashes the assembled parts.
func paramsKey(parts map[string]string) string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(parts[k]))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
