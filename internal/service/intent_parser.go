package service

import (
	"regexp"
	"strings"

	"bizdir-backend/internal/config"
)

// SearchIntent is the request-scoped interpretation of the raw query and
// location inputs. It is created per request and discarded with the response.
type SearchIntent struct {
	Keyword       string
	Location      string
	LocationClass LocationClass
	Lat           float64
	Lng           float64
	RadiusM       float64
	MinRating     float64

	HasGeo            bool
	HasLocationFilter bool
	IsNearMe          bool
	IsQualitySearch   bool
}

// Directed reports whether the query carries any ranking signal. Undirected
// queries fall through to fairness sampling.
func (i *SearchIntent) Directed() bool {
	return i.HasGeo || i.IsNearMe || i.Keyword != ""
}

var (
	nearMeRe   = regexp.MustCompile(`(?i)\b(?:near\s+me|nearby)\b`)
	locSplitRe = regexp.MustCompile(`(?i)^(.+?)\s+(?:in|at|near|from)\s+(.+)$`)
	spacesRe   = regexp.MustCompile(`\s{2,}`)
)

// IntentParser normalizes raw text/location input into a SearchIntent. The
// known-location set is injected so fixture sets can stand in during tests.
type IntentParser struct {
	index *LocationIndex
	cfg   config.SearchConfig
}

func NewIntentParser(index *LocationIndex, cfg config.SearchConfig) *IntentParser {
	return &IntentParser{index: index, cfg: cfg}
}

// Parse interprets the request. defaultRadiusKm is the endpoint fallback used
// when neither the location class nor the caller resolves a radius.
func (p *IntentParser) Parse(params SearchParams, defaultRadiusKm float64) SearchIntent {
	intent := SearchIntent{
		Lat:       params.Lat,
		Lng:       params.Lng,
		HasGeo:    params.HasGeo,
		MinRating: params.MinRating,
	}

	keyword := strings.TrimSpace(params.Query)
	location := strings.TrimSpace(params.Location)

	// "near me"/"nearby" is a whole-word match anywhere in the query; the
	// phrase is stripped so it never reaches text scoring.
	if nearMeRe.MatchString(keyword) {
		intent.IsNearMe = true
		keyword = cleanSpaces(nearMeRe.ReplaceAllString(keyword, " "))
	}

	// Leading "best "/"top " flags quality intent and forces rating sort
	// downstream; a rating floor is injected unless the caller set one.
	lower := strings.ToLower(keyword)
	switch {
	case strings.HasPrefix(lower, "best "):
		intent.IsQualitySearch = true
		keyword = strings.TrimSpace(keyword[len("best "):])
	case strings.HasPrefix(lower, "top "):
		intent.IsQualitySearch = true
		keyword = strings.TrimSpace(keyword[len("top "):])
	}

	// "<keyword> in|at|near|from <location>" split. Only the first split is
	// honored, and an explicit location parameter wins over the parsed one.
	if location == "" {
		if m := locSplitRe.FindStringSubmatch(keyword); m != nil {
			keyword = strings.TrimSpace(m[1])
			location = strings.TrimSpace(m[2])
		}
	}

	intent.LocationClass = p.index.Classify(location)

	// A location string no index entry recognizes is re-interpreted as the
	// keyword when nothing else narrows the query. Users routinely type a
	// business or service name into the location box; without this fallback
	// those requests return nothing.
	if location != "" && intent.LocationClass == LocationUnknown &&
		keyword == "" && params.Category == "" && params.MinRating == 0 &&
		!params.HasPriceFilter && params.ServiceName == "" {
		keyword = location
		location = ""
	}

	// A location that survives the fallback is a concrete place even when the
	// index does not know it; only broad regions widen beyond the specific
	// radius.
	if location != "" && intent.LocationClass == LocationUnknown {
		intent.LocationClass = LocationSpecific
	}

	intent.Keyword = keyword
	intent.Location = location
	intent.HasLocationFilter = location != ""
	intent.RadiusM = p.resolveRadius(&intent, params.RadiusM, defaultRadiusKm)

	if intent.IsQualitySearch && intent.MinRating == 0 {
		intent.MinRating = p.cfg.QualityMinRating
	}
	return intent
}

// resolveRadius picks the search radius: broad locations are effectively
// unbounded, specific ones regional, then the caller's radius, then the
// endpoint default.
func (p *IntentParser) resolveRadius(intent *SearchIntent, callerRadiusM, defaultRadiusKm float64) float64 {
	switch intent.LocationClass {
	case LocationBroad:
		return p.cfg.BroadRadiusKm * 1000
	case LocationSpecific:
		return p.cfg.SpecificRadiusKm * 1000
	}
	if callerRadiusM > 0 {
		return callerRadiusM
	}
	return defaultRadiusKm * 1000
}

func cleanSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
