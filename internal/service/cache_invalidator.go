package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdir-backend/internal/model"
	"bizdir-backend/internal/observability"
	"bizdir-backend/internal/utils"
)

// CacheInvalidator consumes listing-changed events and proactively drops the
// affected cache entries by prefix, then refreshes the listing's geo index
// membership. At-most-once handling is acceptable: entries are derived,
// re-computable and TTL-bounded.
type CacheInvalidator struct {
	reader  *kafka.Reader
	cache   *CacheGateway
	search  *SearchService
	db      *gorm.DB
	metrics *observability.SearchMetrics
	log     *zap.Logger
}

func NewCacheInvalidator(reader *kafka.Reader, cache *CacheGateway, search *SearchService, db *gorm.DB, metrics *observability.SearchMetrics, log *zap.Logger) *CacheInvalidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &CacheInvalidator{
		reader:  reader,
		cache:   cache,
		search:  search,
		db:      db,
		metrics: metrics,
		log:     log,
	}
}

// Run consumes until the context is cancelled.
func (c *CacheInvalidator) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.Warn("invalidation read failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		msgCtx := observability.ExtractKafkaContext(ctx, msg.Headers)
		c.handle(msgCtx, msg)
	}
}

func (c *CacheInvalidator) handle(ctx context.Context, msg kafka.Message) {
	var ev InvalidationEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.metrics.ObserveInvalidation("malformed")
		c.log.Warn("malformed invalidation event", zap.ByteString("value", msg.Value))
		return
	}

	if err := c.cache.DeleteByPrefix(ctx, utils.CACHE_SEARCH_KEY); err != nil {
		c.metrics.ObserveInvalidation("error")
		c.log.Warn("search cache invalidation failed", zap.Int64("listingId", ev.ListingID), zap.Error(err))
		return
	}
	if err := c.cache.DeleteByPrefix(ctx, utils.CACHE_LISTING_KEY+strconv.FormatInt(ev.ListingID, 10)); err != nil {
		c.metrics.ObserveInvalidation("error")
		c.log.Warn("listing cache invalidation failed", zap.Int64("listingId", ev.ListingID), zap.Error(err))
		return
	}

	var listing model.BusinessListing
	err := c.db.WithContext(ctx).First(&listing, ev.ListingID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Deleted listing: drop it from the geo index.
		listing = model.BusinessListing{ID: ev.ListingID, Category: ev.Category}
	case err != nil:
		c.metrics.ObserveInvalidation("error")
		c.log.Warn("listing reload failed during invalidation", zap.Int64("listingId", ev.ListingID), zap.Error(err))
		return
	}
	if err := c.search.RefreshGeoMember(ctx, &listing); err != nil {
		c.metrics.ObserveInvalidation("error")
		c.log.Warn("geo member refresh failed", zap.Int64("listingId", ev.ListingID), zap.Error(err))
		return
	}
	c.metrics.ObserveInvalidation("ok")
}
