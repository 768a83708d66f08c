package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdir-backend/internal/config"
	"bizdir-backend/internal/dto"
	"bizdir-backend/internal/model"
	"bizdir-backend/internal/observability"
	"bizdir-backend/internal/utils"
)

// SearchParams carries the coerced request parameters. Malformed optional
// numerics are already defaulted at the boundary; coordinates and cursors are
// validated there and rejected, never coerced.
type SearchParams struct {
	Query       string
	Location    string
	Category    string
	ServiceName string
	Gender      string
	Sort        string
	Amenities   []string

	HasGeo bool
	Lat    float64
	Lng    float64
	// RadiusM is the caller-supplied radius in meters, 0 when absent.
	RadiusM float64

	MinRating      float64
	MinPrice       float64
	MaxPrice       float64
	HasPriceFilter bool
	HasOffers      bool

	Page   int
	Limit  int
	Cursor string
}

// genderSynonyms is the curated synonym set for the gender-oriented filter.
// Anything else matches literally.
var genderSynonyms = map[string][]string{
	"male":   {"male", "men", "unisex"},
	"female": {"female", "women", "ladies", "unisex"},
	"unisex": {"unisex", "couple"},
}

// SearchService runs the discovery pipeline: intent → cache → retrieval →
// scoring → ranking → pagination → formatting → cache write.
type SearchService struct {
	db        *gorm.DB
	rdb       *redis.Client
	cache     *CacheGateway
	parser    *IntentParser
	formatter *Formatter
	places    *PlaceService
	cfg       config.SearchConfig
	metrics   *observability.SearchMetrics
	log       *zap.Logger
}

func NewSearchService(
	db *gorm.DB,
	rdb *redis.Client,
	cache *CacheGateway,
	parser *IntentParser,
	formatter *Formatter,
	places *PlaceService,
	cfg config.SearchConfig,
	metrics *observability.SearchMetrics,
	log *zap.Logger,
) *SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{
		db:        db,
		rdb:       rdb,
		cache:     cache,
		parser:    parser,
		formatter: formatter,
		places:    places,
		cfg:       cfg,
		metrics:   metrics,
		log:       log,
	}
}

// Search serves the full-text/geo search endpoint.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*dto.SearchResponse, error) {
	return s.run(ctx, "search", params, s.cfg.DefaultRadiusKm, utils.CACHE_SEARCH_TTL, false)
}

// Browse serves undirected category browsing. With no directed signal this is
// where fairness sampling applies.
func (s *SearchService) Browse(ctx context.Context, params SearchParams) (*dto.SearchResponse, error) {
	return s.run(ctx, "browse", params, s.cfg.DefaultRadiusKm, utils.CACHE_BROWSE_TTL, false)
}

// Nearby serves the geo feed. Results depend on the caller's position, so
// they are never cached.
func (s *SearchService) Nearby(ctx context.Context, params SearchParams) (*dto.SearchResponse, error) {
	return s.run(ctx, "nearby", params, s.cfg.NearbyRadiusKm, 0, true)
}

func (s *SearchService) run(ctx context.Context, endpoint string, params SearchParams, defaultRadiusKm float64, ttlSeconds int, forceNearMe bool) (*dto.SearchResponse, error) {
	start := time.Now()
	intent := s.parser.Parse(params, defaultRadiusKm)
	if forceNearMe {
		intent.IsNearMe = true
	}
	strategy := ResolveStrategy(intent, params.Sort)

	// Fairness and near-me responses are intentionally non-deterministic or
	// position-dependent; caching them would defeat both.
	cacheable := ttlSeconds > 0 && strategy != StrategyFairness && !intent.IsNearMe
	var cacheKey string
	if cacheable {
		cacheKey = SearchCacheKey(endpoint, intent, params, strategy)
		if raw, ok := s.cache.Get(ctx, endpoint, cacheKey); ok {
			var resp dto.SearchResponse
			if err := json.Unmarshal(raw, &resp); err == nil {
				resp.Source = "cache"
				return &resp, nil
			}
			s.log.Warn("dropping undecodable cache entry", zap.String("key", cacheKey))
		}
	} else {
		s.metrics.ObserveCache(endpoint, "bypass")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout.Std())
	defer cancel()
	cands, err := s.retrieve(storeCtx, intent, params)
	if err != nil {
		return nil, err
	}
	for i := range cands {
		cands[i].Relevance = RelevanceScore(cands[i].Listing, intent.Keyword)
	}

	resp := &dto.SearchResponse{Source: "live"}
	var page []Candidate
	switch {
	case params.Cursor != "" && intent.HasGeo:
		SortGeoCursor(cands)
		var cur dto.CursorPage
		page, cur, err = CursorPageGeo(cands, params.Cursor, params.Limit)
		if err != nil {
			return nil, err
		}
		resp.Cursor = &cur
	case params.Cursor != "":
		// Cursor feeds without geo page on recency regardless of strategy;
		// the token encodes a creation-time key and nothing else.
		SortRecencyCursor(cands)
		var cur dto.CursorPage
		page, cur, err = CursorPageRecency(cands, params.Cursor, params.Limit)
		if err != nil {
			return nil, err
		}
		resp.Cursor = &cur
	case strategy == StrategyFairness:
		s.metrics.ObserveFairnessSample()
		page = FairnessSample(cands, params.Limit)
		_, info := OffsetPage(cands, 1, params.Limit)
		resp.Page = &info
	default:
		Rank(cands, strategy)
		var info dto.PageInfo
		page, info = OffsetPage(cands, params.Page, params.Limit)
		resp.Page = &info
	}

	views := s.formatter.Project(page, time.Now())
	payload, err := s.formatter.Package(views)
	if err != nil {
		return nil, err
	}
	resp.Payload = payload
	resp.Count = len(views)

	if cacheable {
		if raw, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, cacheKey, raw, time.Duration(ttlSeconds)*time.Second)
		}
	}
	s.metrics.ObserveSearch(endpoint, len(cands), time.Since(start))
	return resp, nil
}

// Autocomplete suggests listing names and categories for a prefix, enriched
// with external place predictions when the integration is on. Place lookup
// failures degrade to database-only suggestions.
func (s *SearchService) Autocomplete(ctx context.Context, text string, limit int) ([]dto.Suggestion, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "live", nil
	}
	cacheKey := utils.CACHE_SEARCH_KEY + utils.CACHE_VERSION + ":suggest:q=" + strings.ToLower(text) + ":limit=" + strconv.Itoa(limit)
	if raw, ok := s.cache.Get(ctx, "suggest", cacheKey); ok {
		var cached []dto.Suggestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, "cache", nil
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout.Std())
	defer cancel()

	var names []string
	err := s.db.WithContext(storeCtx).
		Model(&model.BusinessListing{}).
		Where("active = ? AND platform_disabled = ?", true, false).
		Where("name LIKE ?", text+"%").
		Order("review_count DESC").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		return nil, "", fmt.Errorf("autocomplete names: %w", err)
	}
	var categories []string
	err = s.db.WithContext(storeCtx).
		Model(&model.BusinessListing{}).
		Distinct("category").
		Where("active = ? AND platform_disabled = ?", true, false).
		Where("category LIKE ?", text+"%").
		Limit(limit).
		Pluck("category", &categories).Error
	if err != nil {
		return nil, "", fmt.Errorf("autocomplete categories: %w", err)
	}

	suggestions := make([]dto.Suggestion, 0, 2*limit)
	for _, n := range names {
		suggestions = append(suggestions, dto.Suggestion{Text: n, Kind: "business"})
	}
	for _, c := range categories {
		suggestions = append(suggestions, dto.Suggestion{Text: c, Kind: "category"})
	}

	if s.places.Enabled() {
		preds, err := s.places.Autocomplete(ctx, text)
		if err != nil {
			s.log.Warn("place autocomplete unavailable, serving database-only suggestions", zap.Error(err))
		} else {
			for _, p := range preds {
				suggestions = append(suggestions, dto.Suggestion{
					Text:      p.MainText,
					Secondary: p.SecondaryText,
					Kind:      "place",
					PlaceID:   p.PlaceID,
				})
			}
		}
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	if raw, err := json.Marshal(suggestions); err == nil {
		s.cache.Set(ctx, cacheKey, raw, utils.CACHE_SUGGEST_TTL*time.Second)
	}
	return suggestions, "live", nil
}

// retrieve issues the candidate query. The geo path annotates each candidate
// with its distance from the geo index; nothing else in the pipeline may
// compute distances.
func (s *SearchService) retrieve(ctx context.Context, intent SearchIntent, params SearchParams) ([]Candidate, error) {
	var listings []model.BusinessListing
	distances := map[int64]float64{}

	if intent.HasGeo {
		geoKey := utils.SEARCH_GEO_ALL_KEY
		if params.Category != "" {
			geoKey = utils.SEARCH_GEO_KEY + categorySlug(params.Category)
		}
		locs, err := s.rdb.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
			GeoSearchQuery: redis.GeoSearchQuery{
				Longitude:  intent.Lng,
				Latitude:   intent.Lat,
				Radius:     intent.RadiusM,
				RadiusUnit: "m",
				Sort:       "ASC",
			},
			WithDist: true,
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("geo search: %w", err)
		}
		if len(locs) == 0 {
			return nil, nil
		}
		ids := make([]int64, 0, len(locs))
		for _, loc := range locs {
			id, convErr := strconv.ParseInt(loc.Name, 10, 64)
			if convErr != nil {
				continue
			}
			ids = append(ids, id)
			distances[id] = loc.Dist
		}
		err = s.db.WithContext(ctx).
			Where("id IN ?", ids).
			Where("active = ? AND platform_disabled = ?", true, false).
			Preload("Services", "active = ?", true).
			Find(&listings).Error
		if err != nil {
			return nil, fmt.Errorf("load geo candidates: %w", err)
		}
	} else {
		query := s.db.WithContext(ctx).
			Where("active = ? AND platform_disabled = ?", true, false)
		if params.Category != "" {
			query = query.Where("category LIKE ?", "%"+params.Category+"%")
		}
		err := query.
			Preload("Services", "active = ?", true).
			Find(&listings).Error
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
	}

	cands := make([]Candidate, 0, len(listings))
	for i := range listings {
		listing := &listings[i]
		if !listing.Eligible() {
			continue
		}
		c := Candidate{Listing: listing, MinPrice: minServicePrice(listing)}
		if d, ok := distances[listing.ID]; ok {
			dist := d
			c.Distance = &dist
			listing.Distance = &dist
		}
		cands = append(cands, c)
	}
	return s.applyFilters(cands, intent, params), nil
}

// applyFilters is the AND of OR-groups over the candidate set. Every group
// that the intent activates must pass.
func (s *SearchService) applyFilters(cands []Candidate, intent SearchIntent, params SearchParams) []Candidate {
	textTerms := strings.Fields(strings.ToLower(intent.Keyword))
	locTerms := strings.Fields(strings.ToLower(intent.Location))

	out := cands[:0]
	for _, c := range cands {
		l := c.Listing
		if len(textTerms) > 0 && !matchesText(l, textTerms) {
			continue
		}
		if len(locTerms) > 0 {
			ok, exact := matchesLocation(l, locTerms)
			if !ok {
				continue
			}
			c.ExactLocation = exact
		}
		if params.Category != "" && !strings.Contains(strings.ToLower(l.Category), strings.ToLower(params.Category)) {
			continue
		}
		if intent.MinRating > 0 && l.RatingAvg < intent.MinRating {
			continue
		}
		if params.ServiceName != "" && !matchesService(l, params.ServiceName) {
			continue
		}
		if params.HasOffers && len(l.OfferList()) == 0 {
			continue
		}
		if len(params.Amenities) > 0 && !matchesAmenities(l, params.Amenities) {
			continue
		}
		if params.Gender != "" && !matchesGender(l, params.Gender) {
			continue
		}
		if params.HasPriceFilter && !matchesPrice(l, params.MinPrice, params.MaxPrice) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesText(l *model.BusinessListing, terms []string) bool {
	fields := []string{
		l.Name, l.Branch, l.Area, l.Category, l.Tags, l.Description,
		l.Address, l.City, l.State, l.PostalCode,
	}
	for _, svc := range l.Services {
		fields = append(fields, svc.Name)
	}
	for i := range fields {
		fields[i] = strings.ToLower(fields[i])
	}
	for _, term := range terms {
		found := false
		for _, f := range fields {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchesLocation returns whether all terms hit an address field, and whether
// every term was an exact field match. Exact matches rank above partials
// under the location strategy.
func matchesLocation(l *model.BusinessListing, terms []string) (bool, bool) {
	fields := []string{l.City, l.Area, l.State, l.Address, l.Branch}
	for i := range fields {
		fields[i] = strings.ToLower(fields[i])
	}
	allExact := true
	for _, term := range terms {
		exact, partial := false, false
		for _, f := range fields {
			if f == term {
				exact = true
				break
			}
			if strings.Contains(f, term) {
				partial = true
			}
		}
		if !exact && !partial {
			return false, false
		}
		if !exact {
			allExact = false
		}
	}
	return true, allExact
}

func matchesService(l *model.BusinessListing, name string) bool {
	needle := strings.ToLower(name)
	for _, svc := range l.Services {
		if strings.Contains(strings.ToLower(svc.Name), needle) {
			return true
		}
	}
	return false
}

func matchesAmenities(l *model.BusinessListing, wanted []string) bool {
	have := l.AmenityList()
	for i := range have {
		have[i] = strings.ToLower(have[i])
	}
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		found := false
		for _, h := range have {
			if h == w || strings.Contains(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesGender(l *model.BusinessListing, gender string) bool {
	key := strings.ToLower(strings.TrimSpace(gender))
	accepted, ok := genderSynonyms[key]
	if !ok {
		accepted = []string{key}
	}
	haystack := make([]string, 0, 8)
	haystack = append(haystack, strings.ToLower(l.Category))
	for _, t := range l.TagList() {
		haystack = append(haystack, strings.ToLower(t))
	}
	for _, a := range l.AmenityList() {
		haystack = append(haystack, strings.ToLower(a))
	}
	for _, h := range haystack {
		for _, a := range accepted {
			if strings.Contains(h, a) {
				return true
			}
		}
	}
	return false
}

func matchesPrice(l *model.BusinessListing, min, max float64) bool {
	if max == 0 {
		max = 1 << 30
	}
	for _, svc := range l.Services {
		if !svc.Active {
			continue
		}
		if svc.PriceInRange(min, max) {
			return true
		}
	}
	return false
}

func minServicePrice(l *model.BusinessListing) float64 {
	min := 0.0
	for _, svc := range l.Services {
		if !svc.Active {
			continue
		}
		p := svc.MinPrice()
		if p <= 0 {
			continue
		}
		if min == 0 || p < min {
			min = p
		}
	}
	return min
}

// WarmGeoIndex rebuilds the Redis GEO sets from the store: one set per
// category plus the catch-all. Run at startup and after bulk imports.
func (s *SearchService) WarmGeoIndex(ctx context.Context) error {
	var listings []model.BusinessListing
	err := s.db.WithContext(ctx).
		Where("active = ? AND platform_disabled = ? AND has_geo = ?", true, false, true).
		Find(&listings).Error
	if err != nil {
		return fmt.Errorf("load listings for geo index: %w", err)
	}

	grouped := map[string][]*redis.GeoLocation{}
	for _, l := range listings {
		loc := &redis.GeoLocation{
			Name:      strconv.FormatInt(l.ID, 10),
			Longitude: l.X,
			Latitude:  l.Y,
		}
		grouped[utils.SEARCH_GEO_ALL_KEY] = append(grouped[utils.SEARCH_GEO_ALL_KEY], loc)
		key := utils.SEARCH_GEO_KEY + categorySlug(l.Category)
		grouped[key] = append(grouped[key], loc)
	}

	const batchSize = 100
	for key, locations := range grouped {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear geo key %s: %w", key, err)
		}
		_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for start := 0; start < len(locations); start += batchSize {
				end := start + batchSize
				if end > len(locations) {
					end = len(locations)
				}
				if err := pipe.GeoAdd(ctx, key, locations[start:end]...).Err(); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("geo add %s: %w", key, err)
		}
	}
	s.log.Info("geo index warmed", zap.Int("listings", len(listings)), zap.Int("keys", len(grouped)))
	return nil
}

// RefreshGeoMember updates or removes one listing's geo index membership
// after a mutation.
func (s *SearchService) RefreshGeoMember(ctx context.Context, l *model.BusinessListing) error {
	member := strconv.FormatInt(l.ID, 10)
	keys := []string{utils.SEARCH_GEO_ALL_KEY, utils.SEARCH_GEO_KEY + categorySlug(l.Category)}
	for _, key := range keys {
		if l.Eligible() && l.HasGeo {
			err := s.rdb.GeoAdd(ctx, key, &redis.GeoLocation{
				Name:      member,
				Longitude: l.X,
				Latitude:  l.Y,
			}).Err()
			if err != nil {
				return fmt.Errorf("geo add member: %w", err)
			}
		} else if err := s.rdb.ZRem(ctx, key, member).Err(); err != nil {
			return fmt.Errorf("geo remove member: %w", err)
		}
	}
	return nil
}

func categorySlug(category string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(category)), " ", "-")
}
