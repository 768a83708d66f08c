package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdir-backend/internal/config"
	"bizdir-backend/internal/observability"
)

// Registry aggregates the services for handler injection.
type Registry struct {
	Search      *SearchService
	Listing     *ListingService
	Places      *PlaceService
	Invalidator *CacheInvalidator
}

// NewRegistry wires the shared DB, Redis and Kafka clients into the service
// graph. The location index is built once here and shared read-only.
func NewRegistry(
	db *gorm.DB,
	rdb *redis.Client,
	invalidateWriter *kafka.Writer,
	invalidateReader *kafka.Reader,
	cfg *config.Config,
	metrics *observability.SearchMetrics,
	log *zap.Logger,
) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	searchCfg := cfg.App.Search

	index := DefaultLocationIndex(searchCfg.Country)
	if len(searchCfg.Regions) > 0 {
		index = NewLocationIndex(searchCfg.Country, searchCfg.Regions)
	}

	cache := NewCacheGateway(rdb, metrics, log)
	parser := NewIntentParser(index, searchCfg)
	formatter := NewFormatter(searchCfg.ObfuscationKey)
	places := NewPlaceService(cfg.App.Places, metrics, log)
	search := NewSearchService(db, rdb, cache, parser, formatter, places, searchCfg, metrics, log)
	listing := NewListingService(db, cache, invalidateWriter, metrics, log)

	var invalidator *CacheInvalidator
	if invalidateReader != nil {
		invalidator = NewCacheInvalidator(invalidateReader, cache, search, db, metrics, log)
	}

	return &Registry{
		Search:      search,
		Listing:     listing,
		Places:      places,
		Invalidator: invalidator,
	}
}
