package dto

// PageInfo describes offset-mode pagination. Totals are only known in offset
// mode; cursor feeds use CursorPage instead.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// CursorPage describes cursor-mode pagination. No total is reported: cursor
// semantics cannot know one without a second full scan.
type CursorPage struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// SearchResponse is the outbound shape for every list endpoint. Payload is the
// obfuscated listing array; pagination fields stay in the clear.
type SearchResponse struct {
	Payload string      `json:"payload"`
	Count   int         `json:"count"`
	Page    *PageInfo   `json:"pagination,omitempty"`
	Cursor  *CursorPage `json:"cursor,omitempty"`
	Source  string      `json:"source"`
}

// RatingSummary is the public rating aggregate.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ServicePreview is the capped per-listing service projection.
type ServicePreview struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price,omitempty"`
	DurationMin int     `json:"durationMin,omitempty"`
}

// ListingView is the public-safe projection of a ranked candidate.
type ListingView struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug,omitempty"`
	Category     string           `json:"category"`
	Branch       string           `json:"branch,omitempty"`
	Area         string           `json:"area,omitempty"`
	Address      string           `json:"address,omitempty"`
	City         string           `json:"city,omitempty"`
	State        string           `json:"state,omitempty"`
	Images       []string         `json:"images,omitempty"`
	Rating       RatingSummary    `json:"rating"`
	Distance     *float64         `json:"distance,omitempty"`
	DistanceText string           `json:"distanceText,omitempty"`
	IsOpen       bool             `json:"isOpen"`
	Description  string           `json:"description,omitempty"`
	Services     []ServicePreview `json:"services,omitempty"`
	Offers       []string         `json:"offers,omitempty"`
}

// Suggestion is one autocomplete entry, sourced from the store or the place
// lookup service.
type Suggestion struct {
	Text      string `json:"text"`
	Secondary string `json:"secondary,omitempty"`
	Kind      string `json:"kind"`
	PlaceID   string `json:"placeId,omitempty"`
}
