package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bizdir-backend/internal/observability"
	"bizdir-backend/internal/utils"
)

// CacheGateway is the read-through cache in front of every list endpoint.
// It is best-effort by contract: transport failures are logged and treated as
// misses, never surfaced as request errors.
type CacheGateway struct {
	rdb     *redis.Client
	log     *zap.Logger
	metrics *observability.SearchMetrics
}

func NewCacheGateway(rdb *redis.Client, metrics *observability.SearchMetrics, log *zap.Logger) *CacheGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &CacheGateway{rdb: rdb, log: log, metrics: metrics}
}

// Get returns the stored payload, or false on miss or transport failure.
func (g *CacheGateway) Get(ctx context.Context, endpoint, key string) ([]byte, bool) {
	val, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.log.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		}
		g.metrics.ObserveCache(endpoint, "miss")
		return nil, false
	}
	g.metrics.ObserveCache(endpoint, "hit")
	return val, true
}

// Set stores a derived payload with TTL. Write failures are logged only;
// entries are re-computable and time-bounded, so last-writer-wins is fine.
func (g *CacheGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := g.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		g.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// DeleteByPrefix removes every key under prefix via SCAN, in batches.
func (g *CacheGateway) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := g.rdb.Scan(ctx, 0, prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := g.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("delete cache batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache prefix %s: %w", prefix, err)
	}
	if len(batch) > 0 {
		if err := g.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("delete cache batch: %w", err)
		}
	}
	return nil
}

// SearchCacheKey builds the deterministic key for a search result page. Every
// parameter that affects the result set participates; coordinates are rounded
// so adjacent callers share entries.
func SearchCacheKey(endpoint string, intent SearchIntent, params SearchParams, strategy RankStrategy) string {
	var b strings.Builder
	b.WriteString(utils.CACHE_SEARCH_KEY)
	b.WriteString(utils.CACHE_VERSION)
	b.WriteByte(':')
	b.WriteString(endpoint)
	parts := []string{
		"q=" + strings.ToLower(intent.Keyword),
		"loc=" + strings.ToLower(intent.Location),
		"cat=" + strings.ToLower(params.Category),
		"sort=" + strategy.String(),
		"rating=" + formatFloat(intent.MinRating),
		"gender=" + strings.ToLower(params.Gender),
		"amenities=" + strings.ToLower(strings.Join(params.Amenities, ",")),
		"svc=" + strings.ToLower(params.ServiceName),
		"offers=" + strconv.FormatBool(params.HasOffers),
	}
	if params.HasPriceFilter {
		parts = append(parts, "price="+formatFloat(params.MinPrice)+"-"+formatFloat(params.MaxPrice))
	}
	if intent.HasGeo {
		parts = append(parts,
			"geo="+roundCoord(intent.Lat)+","+roundCoord(intent.Lng),
			"r="+formatFloat(intent.RadiusM),
		)
	}
	if params.Cursor != "" {
		parts = append(parts, "cursor="+params.Cursor)
	} else {
		parts = append(parts, "page="+strconv.Itoa(params.Page))
	}
	parts = append(parts, "limit="+strconv.Itoa(params.Limit))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

func roundCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', utils.GEO_KEY_PRECISION, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
