package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	DefaultPrefix = "catalog:product"
	DefaultTTL    = time.Minute
)

// ProductCache holds product views keyed by lookup term. Entries are scoped to
// a generation; Invalidate bumps it so every older entry becomes unreachable.
// A negative generation means the cache is unavailable and Get/Set do nothing.
type ProductCache interface {
	Generation(ctx context.Context) int64
	Get(ctx context.Context, gen int64, search string) (*catalog.ProductView, bool)
	Set(ctx context.Context, gen int64, search string, view *catalog.ProductView)
	Invalidate(ctx context.Context)
}

type redisProductCache struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	prefix  string
	ttl     time.Duration
	metrics *observability.Metrics
}

func NewRedisProductCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration, metrics *observability.Metrics) ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisProductCache{
		log:     log.With("service", "ProductCache"),
		rdb:     rdb,
		prefix:  DefaultPrefix,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *redisProductCache) genKey() string { return c.prefix + ":gen" }

func (c *redisProductCache) entryKey(gen int64, search string) string {
	return c.prefix + ":v" + strconv.FormatInt(gen, 10) + ":" + strings.TrimSpace(search)
}

func (c *redisProductCache) Generation(ctx context.Context) int64 {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	switch {
	case err == nil:
		return gen
	case errors.Is(err, goredis.Nil):
		return 0
	default:
		c.log.Warn("product cache generation unavailable", "error", err)
		c.metrics.ObserveProductCache("error")
		return -1
	}
}

func (c *redisProductCache) Get(ctx context.Context, gen int64, search string) (*catalog.ProductView, bool) {
	if gen < 0 {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.entryKey(gen, search)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.metrics.ObserveProductCache("miss")
		} else {
			c.log.Warn("product cache get failed", "search", search, "error", err)
			c.metrics.ObserveProductCache("error")
		}
		return nil, false
	}
	var view catalog.ProductView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.log.Warn("product cache entry unreadable", "search", search, "error", err)
		c.metrics.ObserveProductCache("error")
		return nil, false
	}
	c.metrics.ObserveProductCache("hit")
	return &view, true
}

func (c *redisProductCache) Set(ctx context.Context, gen int64, search string, view *catalog.ProductView) {
	if gen < 0 || view == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		c.log.Warn("product cache encode failed", "search", search, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.entryKey(gen, search), raw, c.ttl).Err(); err != nil {
		c.log.Warn("product cache set failed", "search", search, "error", err)
		c.metrics.ObserveProductCache("error")
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		// entries still expire after ttl
		c.log.Error("product cache invalidation failed", "error", err)
		c.metrics.ObserveProductCache("error")
	}
}
