package service

import (
	"math/rand"
	"sort"

	"bizdir-backend/internal/model"
)

// Candidate is a listing that survived retrieval filtering, annotated with
// everything ranking needs.
type Candidate struct {
	Listing   *model.BusinessListing
	Relevance float64
	// Distance in meters, only set on geo retrievals. The geo index is the
	// single source of distance values.
	Distance *float64
	// MinPrice is the cheapest active service price, 0 when unpriced.
	MinPrice float64
	// ExactLocation marks an exact city/area/state match, ranked above
	// partial matches under the location strategy.
	ExactLocation bool
}

// RankStrategy selects between the deterministic sort orders and fairness
// sampling. Resolved once per request, never re-evaluated mid-pipeline.
type RankStrategy int

const (
	StrategyRating RankStrategy = iota
	StrategyPriceLow
	StrategyPriceHigh
	StrategyDistance
	StrategyNearMe
	StrategyGeo
	StrategyLocation
	StrategyText
	StrategyFairness
)

func (s RankStrategy) String() string {
	switch s {
	case StrategyRating:
		return "rating"
	case StrategyPriceLow:
		return "price_low"
	case StrategyPriceHigh:
		return "price_high"
	case StrategyDistance:
		return "distance"
	case StrategyNearMe:
		return "near_me"
	case StrategyGeo:
		return "geo"
	case StrategyLocation:
		return "location"
	case StrategyText:
		return "text"
	default:
		return "fairness"
	}
}

// ResolveStrategy maps intent and the explicit sort parameter onto a ranking
// strategy, in documented priority order. Fairness applies only to undirected
// browse queries, guaranteeing exposure for listings a deterministic order
// would bury.
func ResolveStrategy(intent SearchIntent, sortParam string) RankStrategy {
	if intent.IsQualitySearch {
		return StrategyRating
	}
	switch sortParam {
	case "rating":
		return StrategyRating
	case "price", "price_low":
		return StrategyPriceLow
	case "price_high":
		return StrategyPriceHigh
	case "distance":
		if intent.HasGeo {
			return StrategyDistance
		}
	}
	switch {
	case intent.IsNearMe && intent.HasGeo:
		return StrategyNearMe
	case intent.HasGeo:
		return StrategyGeo
	case intent.HasLocationFilter:
		return StrategyLocation
	case intent.Keyword != "":
		return StrategyText
	}
	return StrategyFairness
}

// Rank orders candidates in place under a deterministic strategy. Fairness
// requests must go through FairnessSample instead.
func Rank(cands []Candidate, strategy RankStrategy) {
	var less func(a, b *Candidate) bool
	switch strategy {
	case StrategyRating:
		less = byRating
	case StrategyPriceLow:
		less = byPriceAsc
	case StrategyPriceHigh:
		less = byPriceDesc
	case StrategyDistance:
		less = byDistance
	case StrategyNearMe:
		less = byNearMe
	case StrategyGeo:
		less = byGeo
	case StrategyLocation:
		less = byLocation
	default:
		less = byText
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return less(&cands[i], &cands[j])
	})
}

// FairnessSample draws a uniformly random page-size sample from the eligible
// set. No seed is persisted: every call reshuffles, which is the point.
func FairnessSample(cands []Candidate, n int) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func byRating(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	if a.Listing.RatingAvg != b.Listing.RatingAvg {
		return a.Listing.RatingAvg > b.Listing.RatingAvg
	}
	return a.Listing.ReviewCount > b.Listing.ReviewCount
}

func byPriceAsc(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	// Unpriced listings sort after priced ones.
	ap, bp := a.MinPrice, b.MinPrice
	if ap == 0 && bp == 0 {
		return false
	}
	if ap == 0 {
		return false
	}
	if bp == 0 {
		return true
	}
	return ap < bp
}

func byPriceDesc(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	return a.MinPrice > b.MinPrice
}

func byDistance(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	return distOf(a) < distOf(b)
}

func byNearMe(a, b *Candidate) bool {
	if da, db := distOf(a), distOf(b); da != db {
		return da < db
	}
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	return a.Listing.RatingAvg > b.Listing.RatingAvg
}

func byGeo(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	if da, db := distOf(a), distOf(b); da != db {
		return da < db
	}
	return a.Listing.RatingAvg > b.Listing.RatingAvg
}

func byLocation(a, b *Candidate) bool {
	if a.ExactLocation != b.ExactLocation {
		return a.ExactLocation
	}
	if a.Listing.RatingAvg != b.Listing.RatingAvg {
		return a.Listing.RatingAvg > b.Listing.RatingAvg
	}
	if a.Listing.ReviewCount != b.Listing.ReviewCount {
		return a.Listing.ReviewCount > b.Listing.ReviewCount
	}
	return a.Listing.CreateTime.After(b.Listing.CreateTime)
}

func byText(a, b *Candidate) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	if a.Listing.RatingAvg != b.Listing.RatingAvg {
		return a.Listing.RatingAvg > b.Listing.RatingAvg
	}
	return a.Listing.CreateTime.After(b.Listing.CreateTime)
}

func distOf(c *Candidate) float64 {
	if c.Distance == nil {
		return 1 << 30
	}
	return *c.Distance
}
