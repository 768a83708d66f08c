package utils

const (
	// Cache key namespaces. Every search cache key starts with CACHE_SEARCH_KEY
	// so mutation-driven invalidation can delete by prefix.
	CACHE_SEARCH_KEY  = "search:results:"
	CACHE_LISTING_KEY = "cache:listing:"
	CACHE_VERSION     = "v1"

	// Redis GEO sets, one per category plus a catch-all member set. The
	// category prefix is namespaced so no category slug can shadow the
	// catch-all key.
	SEARCH_GEO_KEY     = "search:geo:cat:"
	SEARCH_GEO_ALL_KEY = "search:geo:all"

	// TTLs in seconds. Per-endpoint, bounded per the caching policy.
	CACHE_SEARCH_TTL  = 180
	CACHE_BROWSE_TTL  = 300
	CACHE_SUGGEST_TTL = 120
	CACHE_LISTING_TTL = 300

	DEFAULT_PAGE_SIZE    = 20
	MAX_SEARCH_PAGE_SIZE = 50
	MAX_BROWSE_PAGE_SIZE = 100
	MAX_NEARBY_PAGE_SIZE = 500

	// Coordinates are rounded to this many decimals when building cache keys
	// (~11m of precision) so nearby callers share entries.
	GEO_KEY_PRECISION = 4

	SERVICE_PREVIEW_LIMIT = 5
)
