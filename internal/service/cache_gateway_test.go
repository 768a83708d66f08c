package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bizdir-backend/internal/utils"
)

func TestSearchCacheKeyDeterministic(t *testing.T) {
	intent := SearchIntent{Keyword: "Salon", Location: "Mumbai", MinRating: 4}
	params := SearchParams{Category: "Beauty", Page: 2, Limit: 20}

	a := SearchCacheKey("search", intent, params, StrategyText)
	b := SearchCacheKey("search", intent, params, StrategyText)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, utils.CACHE_SEARCH_KEY+utils.CACHE_VERSION))
}

func TestSearchCacheKeyCaseInsensitiveParams(t *testing.T) {
	a := SearchCacheKey("search", SearchIntent{Keyword: "SALON"}, SearchParams{Page: 1, Limit: 20}, StrategyText)
	b := SearchCacheKey("search", SearchIntent{Keyword: "salon"}, SearchParams{Page: 1, Limit: 20}, StrategyText)
	assert.Equal(t, a, b)
}

func TestSearchCacheKeyDiscriminators(t *testing.T) {
	base := SearchIntent{Keyword: "salon"}
	baseParams := SearchParams{Page: 1, Limit: 20}
	ref := SearchCacheKey("search", base, baseParams, StrategyText)

	tests := []struct {
		name     string
		intent   SearchIntent
		params   SearchParams
		endpoint string
		strategy RankStrategy
	}{
		{"endpoint", base, baseParams, "browse", StrategyText},
		{"keyword", SearchIntent{Keyword: "spa"}, baseParams, "search", StrategyText},
		{"location", SearchIntent{Keyword: "salon", Location: "pune"}, baseParams, "search", StrategyText},
		{"strategy", base, baseParams, "search", StrategyRating},
		{"rating", SearchIntent{Keyword: "salon", MinRating: 4}, baseParams, "search", StrategyText},
		{"page", base, SearchParams{Page: 2, Limit: 20}, "search", StrategyText},
		{"limit", base, SearchParams{Page: 1, Limit: 10}, "search", StrategyText},
		{"gender", base, SearchParams{Page: 1, Limit: 20, Gender: "female"}, "search", StrategyText},
		{"amenities", base, SearchParams{Page: 1, Limit: 20, Amenities: []string{"parking"}}, "search", StrategyText},
		{"offers", base, SearchParams{Page: 1, Limit: 20, HasOffers: true}, "search", StrategyText},
		{"price filter", base, SearchParams{Page: 1, Limit: 20, HasPriceFilter: true, MinPrice: 100, MaxPrice: 500}, "search", StrategyText},
		{"cursor replaces page", base, SearchParams{Page: 1, Limit: 20, Cursor: "abc"}, "search", StrategyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := SearchCacheKey(tt.endpoint, tt.intent, tt.params, tt.strategy)
			assert.NotEqual(t, ref, key)
		})
	}
}

func TestSearchCacheKeyCoordinateRounding(t *testing.T) {
	params := SearchParams{Page: 1, Limit: 20}
	near := SearchIntent{HasGeo: true, Lat: 19.07600004, Lng: 72.87770003, RadiusM: 3000}
	alsoNear := SearchIntent{HasGeo: true, Lat: 19.07600009, Lng: 72.87770001, RadiusM: 3000}
	far := SearchIntent{HasGeo: true, Lat: 19.0770, Lng: 72.8777, RadiusM: 3000}

	a := SearchCacheKey("search", near, params, StrategyGeo)
	b := SearchCacheKey("search", alsoNear, params, StrategyGeo)
	c := SearchCacheKey("search", far, params, StrategyGeo)
	assert.Equal(t, a, b, "sub-precision coordinate jitter shares a key")
	assert.NotEqual(t, a, c)
}
