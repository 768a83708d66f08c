package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdir-backend/internal/model"
	"bizdir-backend/internal/observability"
	"bizdir-backend/internal/utils"
)

// InvalidationEvent announces that a listing changed in a way that affects
// cached list pages.
type InvalidationEvent struct {
	ListingID int64  `json:"listingId"`
	Category  string `json:"category"`
}

// ListingService is the read surface for single listings plus the mutation
// hooks that keep derived state (rating aggregate, caches, geo index)
// consistent.
type ListingService struct {
	db      *gorm.DB
	cache   *CacheGateway
	writer  *kafka.Writer
	metrics *observability.SearchMetrics
	log     *zap.Logger
}

func NewListingService(db *gorm.DB, cache *CacheGateway, writer *kafka.Writer, metrics *observability.SearchMetrics, log *zap.Logger) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{db: db, cache: cache, writer: writer, metrics: metrics, log: log}
}

// GetByID reads one listing, cache-aside with TTL. Absent listings return
// ErrListingNotFound.
func (s *ListingService) GetByID(ctx context.Context, id int64) (*model.BusinessListing, string, error) {
	key := utils.CACHE_LISTING_KEY + strconv.FormatInt(id, 10)
	if raw, ok := s.cache.Get(ctx, "listing", key); ok {
		var cached model.BusinessListing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, "cache", nil
		}
	}

	var listing model.BusinessListing
	err := s.db.WithContext(ctx).
		Preload("Services", "active = ?", true).
		First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrListingNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("load listing %d: %w", id, err)
	}
	if raw, err := json.Marshal(&listing); err == nil {
		s.cache.Set(ctx, key, raw, utils.CACHE_LISTING_TTL*time.Second)
	}
	return &listing, "live", nil
}

// ApplyRating records one review star and recomputes the aggregate from the
// per-star counters; the stored average is never trusted independently.
// The mutation publishes an invalidation event for affected list caches.
func (s *ListingService) ApplyRating(ctx context.Context, id int64, stars int) (*model.BusinessListing, error) {
	if stars < 1 || stars > 5 {
		return nil, NewValidationError("INVALID_RATING", "stars must be between 1 and 5")
	}
	var listing model.BusinessListing
	err := s.db.WithContext(ctx).First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load listing %d: %w", id, err)
	}

	switch stars {
	case 1:
		listing.Stars1++
	case 2:
		listing.Stars2++
	case 3:
		listing.Stars3++
	case 4:
		listing.Stars4++
	case 5:
		listing.Stars5++
	}
	listing.RecomputeRating()
	listing.UpdateTime = time.Now()
	if err := s.db.WithContext(ctx).Save(&listing).Error; err != nil {
		return nil, fmt.Errorf("save listing %d: %w", id, err)
	}
	s.PublishInvalidation(ctx, InvalidationEvent{ListingID: listing.ID, Category: listing.Category})
	return &listing, nil
}

// PublishInvalidation emits a listing-changed event. Failures are logged but
// do not fail the mutation: cache entries are TTL-bounded anyway.
func (s *ListingService) PublishInvalidation(ctx context.Context, ev InvalidationEvent) {
	if s.writer == nil {
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ListingID, 10)),
		Value: value,
	}
	observability.InjectKafkaHeaders(ctx, &msg.Headers)
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.metrics.ObserveInvalidation("publish_error")
		s.log.Warn("invalidation publish failed", zap.Int64("listingId", ev.ListingID), zap.Error(err))
		return
	}
	s.metrics.ObserveInvalidation("published")
}
