package service

import (
	"strings"

	"bizdir-backend/internal/model"
)

// Relevance signal weights. Name tiers are mutually exclusive (only the
// highest applies); the remaining groups stack on top.
const (
	ScoreNameExact    = 100.0
	ScoreNamePrefix   = 80.0
	ScoreNameContains = 60.0
	ScoreServiceExact = 50.0
	ScoreCategory     = 40.0
	ScoreTag          = 30.0
)

// nameTierRules is the ordered cascade for the name group. The first matching
// rule wins, which keeps the tie-break policy auditable in one place.
var nameTierRules = []struct {
	match func(name, keyword string) bool
	score float64
}{
	{func(name, kw string) bool { return name == kw }, ScoreNameExact},
	{func(name, kw string) bool { return strings.HasPrefix(name, kw) }, ScoreNamePrefix},
	{func(name, kw string) bool { return strings.Contains(name, kw) }, ScoreNameContains},
}

// RelevanceScore computes the additive keyword relevance for one listing.
// Without a keyword every listing scores zero and ranking degrades to
// rating/recency or fairness sampling.
func RelevanceScore(listing *model.BusinessListing, keyword string) float64 {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return 0
	}

	score := 0.0
	name := strings.ToLower(listing.Name)
	for _, rule := range nameTierRules {
		if rule.match(name, kw) {
			score += rule.score
			break
		}
	}

	for _, svc := range listing.Services {
		if strings.EqualFold(strings.TrimSpace(svc.Name), kw) {
			score += ScoreServiceExact
			break
		}
	}

	if strings.Contains(strings.ToLower(listing.Category), kw) {
		score += ScoreCategory
	}

	for _, tag := range listing.TagList() {
		if strings.Contains(strings.ToLower(tag), kw) {
			score += ScoreTag
			break
		}
	}

	return score
}
